package domain

import "strings"

// Customer is a record owned by the customers domain. ID is assigned by the
// customers API on creation and never changes afterwards.
type Customer struct {
	ID        string `json:"id" dynamodbav:"id"`
	FirstName string `json:"firstName" dynamodbav:"firstName"`
	Surname   string `json:"surname" dynamodbav:"surname"`
}

// CreateCustomerInput is the payload of a customer creation. It carries no
// identifier; the server assigns one.
type CreateCustomerInput struct {
	FirstName string `json:"firstName"`
	Surname   string `json:"surname"`
}

// Validate checks that both name fields are present.
func (in CreateCustomerInput) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return Required("firstName")
	}
	if strings.TrimSpace(in.Surname) == "" {
		return Required("surname")
	}
	return nil
}

// NewCustomer builds the stored record from an input and a server-assigned id.
func NewCustomer(id string, in CreateCustomerInput) Customer {
	return Customer{ID: id, FirstName: in.FirstName, Surname: in.Surname}
}
