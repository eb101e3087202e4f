package repository

import (
	"context"

	"github.com/fixhub/repairshop/internal/domain"
)

// CustomerRepository persists ticket owners.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type customerRepository struct {
	q Querier
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(q Querier) CustomerRepository {
	return &customerRepository{q: q}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (name, phone, email)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		customer.Name,
		customer.Phone,
		customer.Email,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `
        SELECT id, name, phone, email, created_at, updated_at
        FROM customers WHERE id=$1`
	var customer domain.Customer
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.Email,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &customer, nil
}
