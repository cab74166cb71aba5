package domainapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/golden-ipa/internal/domain"
	"github.com/ignite/golden-ipa/internal/storage"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + string(rune('0'+n))
	}
}

func newCustomersAPI(t *testing.T, opts RouterOptions) (http.Handler, *storage.Customers) {
	t.Helper()
	repo := storage.NewCustomers(storage.NewMemoryTable(storage.DefaultCustomersTable))
	h := NewCustomersHandler(repo)
	h.newID = sequentialIDs("c")
	return NewCustomersRouter(h, opts), repo
}

func newOrdersAPI(t *testing.T, opts RouterOptions) (http.Handler, *storage.Orders) {
	t.Helper()
	repo := storage.NewOrders(storage.NewMemoryTable(storage.DefaultOrdersTable))
	h := NewOrdersHandler(repo)
	h.newID = sequentialIDs("o")
	return NewOrdersRouter(h, opts), repo
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestCreateCustomer(t *testing.T) {
	api, repo := newCustomersAPI(t, RouterOptions{})

	rec := serve(api, http.MethodPost, "/customers/", `{"firstName":"Ada","surname":"Lovelace","id":"chosen-by-caller"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.Customer{ID: "c-1", FirstName: "Ada", Surname: "Lovelace"}, got)

	stored, err := repo.Get(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	_, err = repo.Get(context.Background(), "chosen-by-caller")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateCustomerRejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty body", "", "request body is required"},
		{"whitespace body", "   ", "request body is required"},
		{"not json", "firstName=Ada", "request body must be a JSON object"},
		{"array", `[{"firstName":"Ada"}]`, "request body must be a JSON object"},
		{"truncated", `{"firstName":"Ada"`, "request body is not valid JSON"},
		{"two objects", `{"firstName":"Ada","surname":"L"}{}`, "single JSON object"},
		{"missing surname", `{"firstName":"Ada"}`, "surname not supplied"},
		{"blank first name", `{"firstName":"  ","surname":"Lovelace"}`, "firstName not supplied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _ := newCustomersAPI(t, RouterOptions{})
			rec := serve(api, http.MethodPost, "/customers/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec), tt.wantErr)
		})
	}
}

func TestGetCustomer(t *testing.T) {
	api, repo := newCustomersAPI(t, RouterOptions{})
	require.NoError(t, repo.Create(context.Background(), domain.Customer{ID: "c-9", FirstName: "Grace", Surname: "Hopper"}))

	rec := serve(api, http.MethodGet, "/customers/c-9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"c-9","firstName":"Grace","surname":"Hopper"}`, rec.Body.String())

	rec = serve(api, http.MethodGet, "/customers/c-404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingCustomers struct{}

func (failingCustomers) Create(context.Context, domain.Customer) error {
	return &storage.StoreError{Op: "put", Table: "ipa-customers-table", Err: errors.New("dial tcp 10.0.0.7:8000: i/o timeout")}
}

func (failingCustomers) Get(context.Context, string) (domain.Customer, error) {
	return domain.Customer{}, &storage.StoreError{Op: "get", Table: "ipa-customers-table", Err: errors.New("throttled")}
}

func (failingCustomers) Ping(context.Context) error { return errors.New("down") }

func TestStoreFailureIsOpaque(t *testing.T) {
	api := NewCustomersRouter(NewCustomersHandler(failingCustomers{}), RouterOptions{})

	rec := serve(api, http.MethodPost, "/customers/", `{"firstName":"Ada","surname":"Lovelace"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec))
	assert.NotContains(t, rec.Body.String(), "10.0.0.7")

	rec = serve(api, http.MethodGet, "/customers/c-1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(api, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateOrder(t *testing.T) {
	api, repo := newOrdersAPI(t, RouterOptions{})

	rec := serve(api, http.MethodPost, "/customers/c-1/orders/", `{"productId":"p-42","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.Order{ID: "o-1", CustomerID: "c-1", ProductID: "p-42", Quantity: 2}, got)

	rec = serve(api, http.MethodPost, "/customers/c-1/orders/", `{"customerId":"c-1","productId":"p-7","quantity":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	orders, err := repo.ListByCustomer(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestCreateOrderRejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"customer mismatch", `{"customerId":"c-2","productId":"p","quantity":1}`, "does not match path"},
		{"missing product", `{"quantity":1}`, "productId not supplied"},
		{"zero quantity", `{"productId":"p","quantity":0}`, "quantity not supplied"},
		{"negative quantity", `{"productId":"p","quantity":-3}`, "quantity must be greater than zero"},
		{"string quantity", `{"productId":"p","quantity":"two"}`, "not valid JSON"},
		{"empty body", ``, "request body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, repo := newOrdersAPI(t, RouterOptions{})
			rec := serve(api, http.MethodPost, "/customers/c-1/orders/", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeError(t, rec), tt.wantErr)

			orders, err := repo.ListByCustomer(context.Background(), "c-1")
			require.NoError(t, err)
			assert.Empty(t, orders)
		})
	}
}

func TestListOrders(t *testing.T) {
	api, repo := newOrdersAPI(t, RouterOptions{})

	rec := serve(api, http.MethodGet, "/customers/unknown/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	require.NoError(t, repo.Create(context.Background(), domain.Order{ID: "o-1", CustomerID: "c-1", ProductID: "p", Quantity: 1}))
	require.NoError(t, repo.Create(context.Background(), domain.Order{ID: "o-2", CustomerID: "c-2", ProductID: "p", Quantity: 1}))

	rec = serve(api, http.MethodGet, "/customers/c-1/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"o-1","customerId":"c-1","productId":"p","quantity":1}]`, rec.Body.String())
}

func TestEmptyPathParameterRejected(t *testing.T) {
	orders, orderRepo := newOrdersAPI(t, RouterOptions{})
	require.NoError(t, orderRepo.Create(context.Background(), domain.Order{ID: "o-1", CustomerID: "c-1", ProductID: "p", Quantity: 1}))

	rec := serve(orders, http.MethodGet, "/customers//orders", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "customerId path parameter is required")

	rec = serve(orders, http.MethodPost, "/customers//orders/", `{"customerId":"c-1","productId":"p","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "customerId path parameter is required")

	list, err := orderRepo.ListByCustomer(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEscapedPathParameter(t *testing.T) {
	customers, customerRepo := newCustomersAPI(t, RouterOptions{BasePath: "/prod"})
	require.NoError(t, customerRepo.Create(context.Background(), domain.Customer{ID: "a/b", FirstName: "Grace", Surname: "Hopper"}))

	rec := serve(customers, http.MethodGet, "/prod/customers/a%2Fb", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"a/b","firstName":"Grace","surname":"Hopper"}`, rec.Body.String())

	orders, _ := newOrdersAPI(t, RouterOptions{})

	rec = serve(orders, http.MethodPost, "/customers/a%2Fb/orders/", `{"customerId":"a/b","productId":"p","quantity":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(orders, http.MethodPost, "/customers/100%25/orders/", `{"customerId":"100%","productId":"p","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(orders, http.MethodGet, "/customers/a%2Fb/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"o-1","customerId":"a/b","productId":"p","quantity":1}]`, rec.Body.String())

	rec = serve(orders, http.MethodGet, "/customers/100%25/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"o-2","customerId":"100%","productId":"p","quantity":2}]`, rec.Body.String())
}

func TestBasePath(t *testing.T) {
	api, _ := newCustomersAPI(t, RouterOptions{BasePath: "/prod/"})

	rec := serve(api, http.MethodPost, "/prod/customers/", `{"firstName":"Ada","surname":"Lovelace"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(api, http.MethodPost, "/customers/", `{"firstName":"Ada","surname":"Lovelace"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(api, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	api, _ := newOrdersAPI(t, RouterOptions{})

	rec := serve(api, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"orders"}`, rec.Body.String())

	rec = serve(api, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.Required("x")))
	assert.Equal(t, http.StatusBadRequest, statusFor(badRequest("x")))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(&storage.StoreError{Err: errors.New("x")}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func httptestBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
