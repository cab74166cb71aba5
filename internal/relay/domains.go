package relay

import (
	"context"

	"github.com/ignite/golden-ipa/internal/domain"
)

// CustomersClient calls the customers domain API.
type CustomersClient struct {
	client  *Client
	baseURL string
}

// Customers returns a client for the customers domain API at baseURL.
func (c *Client) Customers(baseURL string) *CustomersClient {
	return &CustomersClient{client: c, baseURL: baseURL}
}

// Create asks the domain API to create a customer.
func (c *CustomersClient) Create(ctx context.Context, in domain.CreateCustomerInput) (domain.Customer, error) {
	return Call[domain.Customer](ctx, c.client, CreateCustomer, c.baseURL, nil, in)
}

// Get fetches a customer by id.
func (c *CustomersClient) Get(ctx context.Context, id string) (domain.Customer, error) {
	return Call[domain.Customer](ctx, c.client, GetCustomer, c.baseURL, map[string]string{"id": id}, nil)
}

// OrdersClient calls the orders domain API.
type OrdersClient struct {
	client  *Client
	baseURL string
}

// Orders returns a client for the orders domain API at baseURL.
func (c *Client) Orders(baseURL string) *OrdersClient {
	return &OrdersClient{client: c, baseURL: baseURL}
}

// Create asks the domain API to create an order for in.CustomerID.
func (c *OrdersClient) Create(ctx context.Context, in domain.CreateOrderInput) (domain.Order, error) {
	return Call[domain.Order](ctx, c.client, CreateOrder, c.baseURL, map[string]string{"customerId": in.CustomerID}, in)
}

// ListForCustomer returns the customer's orders, never nil.
func (c *OrdersClient) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	orders, err := Call[[]domain.Order](ctx, c.client, ListOrdersForCustomer, c.baseURL, map[string]string{"id": customerID}, nil)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
