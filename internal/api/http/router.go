package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fixhub/repairshop/internal/api/http/handlers"
	"github.com/fixhub/repairshop/internal/auth"
	"github.com/fixhub/repairshop/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Parts          *handlers.PartsHandler
	Returns        *handlers.ReturnsHandler
	Finance        *handlers.FinanceHandler
	Customers      *handlers.CustomersHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Everything except health and
// metrics requires a bearer actor.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/number/:ticketNumber", cfg.Tickets.GetTicketByNumber)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/transitions", cfg.Tickets.GetAllowedTransitions)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Delete("/:id", auth.RequireAdmin(), cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/parts", cfg.Parts.AddTicketPart)
	tickets.Get("/:id/parts", cfg.Parts.ListTicketParts)
	tickets.Delete("/:id/parts/:ticketPartId", cfg.Parts.RemoveTicketPart)
	tickets.Post("/:id/payments", cfg.Tickets.RecordPayment)
	tickets.Get("/:id/payments", cfg.Tickets.ListPayments)

	returns := protected.Group("/returns")
	returns.Post("", cfg.Returns.CreateReturn)
	returns.Get("", cfg.Returns.ListReturns)
	returns.Get("/stats", cfg.Returns.Stats)
	returns.Get("/:id", cfg.Returns.GetReturn)
	returns.Post("/:id/approve", auth.RequireAdmin(), cfg.Returns.ApproveReturn)
	returns.Delete("/:id", auth.RequireAdmin(), cfg.Returns.DeleteReturn)

	parts := protected.Group("/parts")
	parts.Post("", cfg.Parts.CreatePart)
	parts.Get("", cfg.Parts.ListParts)
	parts.Get("/:id", cfg.Parts.GetPart)
	parts.Get("/:id/transactions", cfg.Parts.GetPartLedger)

	expenses := protected.Group("/expenses", auth.RequireAdmin())
	expenses.Post("", cfg.Finance.RecordExpense)
	expenses.Delete("/:id", cfg.Finance.DeleteExpense)

	protected.Get("/finance/metrics", cfg.Finance.GetMetrics)

	customers := protected.Group("/customers")
	customers.Post("", cfg.Customers.CreateCustomer)
	customers.Get("/:id", cfg.Customers.GetCustomer)
}
