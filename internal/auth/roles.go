package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixhub/repairshop/internal/domain"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

// RequireRole ensures the actor has one of the allowed roles. With no
// arguments it only requires authentication. Rejections are structured
// domain errors so the error middleware renders 401/403, not 500.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[actor.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the actor is an admin.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
