// Package experience is the public layer: one resolver per field of the
// public schema, each validating its arguments and relaying a single signed
// call to the owning domain API. It keeps no state between invocations.
package experience

import (
	"context"
	"strings"

	"github.com/ignite/golden-ipa/internal/domain"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
)

// CustomersAPI is the customers domain as seen from the experience layer.
type CustomersAPI interface {
	Create(ctx context.Context, in domain.CreateCustomerInput) (domain.Customer, error)
	Get(ctx context.Context, id string) (domain.Customer, error)
}

// OrdersAPI is the orders domain as seen from the experience layer.
type OrdersAPI interface {
	Create(ctx context.Context, in domain.CreateOrderInput) (domain.Order, error)
	ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}

// CreateCustomerArgs are the arguments of Mutation.createCustomer.
type CreateCustomerArgs struct {
	Input domain.CreateCustomerInput `json:"input"`
}

// GetCustomerArgs are the arguments of Query.getCustomer.
type GetCustomerArgs struct {
	ID string `json:"id"`
}

// CreateOrderArgs are the arguments of Mutation.createOrder.
type CreateOrderArgs struct {
	Input domain.CreateOrderInput `json:"input"`
}

// Resolvers implements the public operations.
type Resolvers struct {
	customers CustomersAPI
	orders    OrdersAPI
}

// NewResolvers creates Resolvers over the two domain clients.
func NewResolvers(customers CustomersAPI, orders OrdersAPI) *Resolvers {
	return &Resolvers{customers: customers, orders: orders}
}

// CreateCustomer resolves Mutation.createCustomer.
func (r *Resolvers) CreateCustomer(ctx context.Context, args CreateCustomerArgs) (domain.Customer, error) {
	ctx, log := begin(ctx, "createCustomer")
	if err := args.Input.Validate(); err != nil {
		log.Warn("invalid arguments", "error", err.Error())
		return domain.Customer{}, err
	}
	log.Info("request", "firstName", args.Input.FirstName, "surname", args.Input.Surname)

	customer, err := r.customers.Create(ctx, args.Input)
	if err != nil {
		return domain.Customer{}, err
	}
	log.Info("response", "customerId", customer.ID)
	return customer, nil
}

// GetCustomer resolves Query.getCustomer.
func (r *Resolvers) GetCustomer(ctx context.Context, args GetCustomerArgs) (domain.Customer, error) {
	ctx, log := begin(ctx, "getCustomer")
	if strings.TrimSpace(args.ID) == "" {
		err := domain.Required("id")
		log.Warn("invalid arguments", "error", err.Error())
		return domain.Customer{}, err
	}
	log.Info("request", "customerId", args.ID)

	customer, err := r.customers.Get(ctx, args.ID)
	if err != nil {
		return domain.Customer{}, err
	}
	log.Info("response", "customerId", customer.ID)
	return customer, nil
}

// CreateOrder resolves Mutation.createOrder.
func (r *Resolvers) CreateOrder(ctx context.Context, args CreateOrderArgs) (domain.Order, error) {
	ctx, log := begin(ctx, "createOrder")
	if err := args.Input.Validate(); err != nil {
		log.Warn("invalid arguments", "error", err.Error())
		return domain.Order{}, err
	}
	log.Info("request", "customerId", args.Input.CustomerID, "productId", args.Input.ProductID, "quantity", args.Input.Quantity)

	order, err := r.orders.Create(ctx, args.Input)
	if err != nil {
		return domain.Order{}, err
	}
	log.Info("response", "orderId", order.ID)
	return order, nil
}

// CustomerOrders resolves the Customer.orders relation for an already
// resolved parent customer.
func (r *Resolvers) CustomerOrders(ctx context.Context, source domain.Customer) ([]domain.Order, error) {
	ctx, log := begin(ctx, "customerOrders")
	if strings.TrimSpace(source.ID) == "" {
		err := domain.Required("id")
		log.Warn("invalid source", "error", err.Error())
		return nil, err
	}
	log.Info("request", "customerId", source.ID)

	orders, err := r.orders.ListForCustomer(ctx, source.ID)
	if err != nil {
		return nil, err
	}
	log.Info("response", "count", len(orders))
	return orders, nil
}

func begin(ctx context.Context, field string) (context.Context, *logger.Entry) {
	log := logger.Correlation("resolver." + field)
	log.Info("started")
	return logger.WithEntry(ctx, log), log
}
