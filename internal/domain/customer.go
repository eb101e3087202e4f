package domain

import "time"

// Customer owns tickets. Only intake-level fields are modeled here.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
