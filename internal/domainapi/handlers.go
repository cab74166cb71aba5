// Package domainapi serves the private customers and orders APIs. Handlers
// are stateless: each request gets its own correlation entry, validates its
// input, touches the store once and answers with JSON.
package domainapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/golden-ipa/internal/domain"
	"github.com/ignite/golden-ipa/internal/pkg/httputil"
	"github.com/ignite/golden-ipa/internal/pkg/logger"
)

// HeaderConsumerID names the calling layer.
const HeaderConsumerID = "X-Consumer-Id"

// CustomerRepository is the store the customers API works on.
type CustomerRepository interface {
	Create(ctx context.Context, c domain.Customer) error
	Get(ctx context.Context, id string) (domain.Customer, error)
	Ping(ctx context.Context) error
}

// OrderRepository is the store the orders API works on.
type OrderRepository interface {
	Create(ctx context.Context, o domain.Order) error
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	Ping(ctx context.Context) error
}

// CustomersHandler serves the customers domain API.
type CustomersHandler struct {
	repo  CustomerRepository
	newID func() string
}

// NewCustomersHandler creates a CustomersHandler.
func NewCustomersHandler(repo CustomerRepository) *CustomersHandler {
	return &CustomersHandler{repo: repo, newID: uuid.NewString}
}

// Create handles POST /customers/.
func (h *CustomersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, log := begin(r, "customers.create")

	var in domain.CreateCustomerInput
	if err := decodeBody(w, r, &in); err != nil {
		respondError(w, log, err)
		return
	}
	if err := in.Validate(); err != nil {
		respondError(w, log, err)
		return
	}

	customer := domain.NewCustomer(h.newID(), in)
	log.Info("request", "firstName", customer.FirstName, "surname", customer.Surname)
	if err := h.repo.Create(ctx, customer); err != nil {
		respondError(w, log, err)
		return
	}

	log.Info("response", "status", http.StatusCreated, "customerId", customer.ID)
	httputil.Created(w, customer)
}

// Get handles GET /customers/{customerId}.
func (h *CustomersHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, log := begin(r, "customers.get")
	id, err := pathParam(r, "customerId")
	if err != nil {
		respondError(w, log, err)
		return
	}

	customer, err := h.repo.Get(ctx, id)
	if err != nil {
		respondError(w, log, err)
		return
	}

	log.Info("response", "status", http.StatusOK, "customerId", customer.ID)
	httputil.OK(w, customer)
}

// Ping checks the customers store.
func (h *CustomersHandler) Ping(ctx context.Context) error { return h.repo.Ping(ctx) }

// OrdersHandler serves the orders domain API.
type OrdersHandler struct {
	repo  OrderRepository
	newID func() string
}

// NewOrdersHandler creates an OrdersHandler.
func NewOrdersHandler(repo OrderRepository) *OrdersHandler {
	return &OrdersHandler{repo: repo, newID: uuid.NewString}
}

// Create handles POST /customers/{customerId}/orders/. The path customer
// fills an absent body customerId; a differing one is rejected.
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, log := begin(r, "orders.create")
	pathCustomer, err := pathParam(r, "customerId")
	if err != nil {
		respondError(w, log, err)
		return
	}

	var in domain.CreateOrderInput
	if err := decodeBody(w, r, &in); err != nil {
		respondError(w, log, err)
		return
	}
	switch {
	case in.CustomerID == "":
		in.CustomerID = pathCustomer
	case in.CustomerID != pathCustomer:
		respondError(w, log, badRequest("customerId in body does not match path"))
		return
	}
	if err := in.Validate(); err != nil {
		respondError(w, log, err)
		return
	}

	order := domain.NewOrder(h.newID(), in)
	log.Info("request", "customerId", order.CustomerID, "productId", order.ProductID, "quantity", order.Quantity)
	if err := h.repo.Create(ctx, order); err != nil {
		respondError(w, log, err)
		return
	}

	log.Info("response", "status", http.StatusCreated, "orderId", order.ID)
	httputil.Created(w, order)
}

// List handles GET /customers/{customerId}/orders. An unknown customer has
// no orders; it is not an error.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, log := begin(r, "orders.list")
	customerID, err := pathParam(r, "customerId")
	if err != nil {
		respondError(w, log, err)
		return
	}

	orders, err := h.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		respondError(w, log, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	log.Info("response", "status", http.StatusOK, "customerId", customerID, "count", len(orders))
	httputil.OK(w, orders)
}

// Ping checks the orders store.
func (h *OrdersHandler) Ping(ctx context.Context) error { return h.repo.Ping(ctx) }

// begin opens the correlation entry for one call and logs its start.
func begin(r *http.Request, operation string) (context.Context, *logger.Entry) {
	log := logger.Correlation(operation)
	if consumer := r.Header.Get(HeaderConsumerID); consumer != "" {
		log = log.With("consumerId", consumer)
	}
	if caller, ok := CallerFrom(r.Context()); ok {
		log = log.With("caller", caller.Name)
	}
	log.Info("started", "method", r.Method, "path", r.URL.Path)
	return logger.WithEntry(r.Context(), log), log
}

// pathParam returns a required path segment in its unescaped form. chi
// routes on the escaped path whenever the URL carries one, so a segment
// such as "a%2Fb" is still escaped here.
func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(v)
		if err != nil {
			return "", badRequest(name + " path parameter is not validly escaped")
		}
		v = unescaped
	}
	if v == "" {
		return "", badRequest(name + " path parameter is required")
	}
	return v, nil
}

// decodeBody reads exactly one JSON object into v. Unknown fields,
// including a caller-supplied id, are ignored.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("request body could not be read")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return badRequest("request body is required")
	}
	if data[0] != '{' {
		return badRequest("request body must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return badRequest("request body is not valid JSON: " + err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}
