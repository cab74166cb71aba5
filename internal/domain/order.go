package domain

import "strings"

// CustomerIDIndex is the secondary index used to look up all orders placed
// by one customer.
const CustomerIDIndex = "customerIdIndex"

// Order is a record owned by the orders domain. CustomerID references a
// Customer but is not checked against the customers domain: the two stores
// are independent.
type Order struct {
	ID         string `json:"id" dynamodbav:"id"`
	CustomerID string `json:"customerId" dynamodbav:"customerId"`
	ProductID  string `json:"productId" dynamodbav:"productId"`
	Quantity   int    `json:"quantity" dynamodbav:"quantity"`
}

// CreateOrderInput is the payload of an order creation.
type CreateOrderInput struct {
	CustomerID string `json:"customerId"`
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
}

// Validate checks the required fields and that quantity is positive.
func (in CreateOrderInput) Validate() error {
	if strings.TrimSpace(in.CustomerID) == "" {
		return Required("customerId")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return Required("productId")
	}
	if in.Quantity == 0 {
		return Required("quantity")
	}
	if in.Quantity < 0 {
		return Invalid("quantity", "must be greater than zero")
	}
	return nil
}

// NewOrder builds the stored record from an input and a server-assigned id.
func NewOrder(id string, in CreateOrderInput) Order {
	return Order{
		ID:         id,
		CustomerID: in.CustomerID,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
	}
}
