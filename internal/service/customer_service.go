package service

import (
	"context"
	"strings"

	"github.com/fixhub/repairshop/internal/domain"
	"github.com/fixhub/repairshop/internal/repository"
	apperrors "github.com/fixhub/repairshop/pkg/util/errorutil"
)

// CustomerService owns the minimal customer records tickets hang off.
type CustomerService struct {
	customers repository.CustomerRepository
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// CustomerCreateInput describes a customer record.
type CustomerCreateInput struct {
	Name  string
	Phone string
	Email *string
}

// CreateCustomer registers a customer.
func (s *CustomerService) CreateCustomer(ctx context.Context, input CustomerCreateInput) (*domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, apperrors.NewValidationError("phone required", nil)
	}

	customer := &domain.Customer{
		Name:  strings.TrimSpace(input.Name),
		Phone: strings.TrimSpace(input.Phone),
		Email: input.Email,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}

// GetCustomer fetches a customer.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return customer, nil
}
