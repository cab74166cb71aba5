package storage

import (
	"context"

	"github.com/ignite/golden-ipa/internal/domain"
)

// OrderIndexes are the secondary indexes of the orders table.
var OrderIndexes = []Index{
	{Name: domain.CustomerIDIndex, Attribute: "customerId"},
}

// Orders persists order records.
type Orders struct {
	table Table
}

// NewOrders creates an order repository on t, which must carry OrderIndexes.
func NewOrders(t Table) *Orders {
	return &Orders{table: t}
}

// Create stores o. An existing record with the same id is replaced.
func (r *Orders) Create(ctx context.Context, o domain.Order) error {
	return r.table.Put(ctx, o)
}

// ListByCustomer returns the customer's orders. It never returns a nil
// slice and never reports not-found: a customer without orders, or an
// unknown customer, yields an empty list.
func (r *Orders) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	orders := []domain.Order{}
	if err := r.table.Query(ctx, OrderIndexes[0], customerID, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// Ping checks the underlying table.
func (r *Orders) Ping(ctx context.Context) error {
	return r.table.Ping(ctx)
}
