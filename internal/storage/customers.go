package storage

import (
	"context"
	"fmt"

	"github.com/ignite/golden-ipa/internal/domain"
)

// Customers persists customer records.
type Customers struct {
	table Table
}

// NewCustomers creates a customer repository on t.
func NewCustomers(t Table) *Customers {
	return &Customers{table: t}
}

// Create stores c. An existing record with the same id is replaced.
func (r *Customers) Create(ctx context.Context, c domain.Customer) error {
	return r.table.Put(ctx, c)
}

// Get returns the customer with the given id, or an error wrapping
// domain.ErrNotFound.
func (r *Customers) Get(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	found, err := r.table.Get(ctx, id, &c)
	if err != nil {
		return domain.Customer{}, err
	}
	if !found {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// Ping checks the underlying table.
func (r *Customers) Ping(ctx context.Context) error {
	return r.table.Ping(ctx)
}
