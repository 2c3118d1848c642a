package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
	ordersvc "github.com/adosoftyazilim/blrb2b/internal/service/order"
	"github.com/adosoftyazilim/blrb2b/internal/storage/memory"
)

type apiFixture struct {
	router    http.Handler
	products  domain.ProductRepository
	customers domain.CustomerRepository
	customer  domain.Customer
	product   domain.Product
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	products := memory.NewProductRepository()
	customers := memory.NewCustomerRepository()
	orders := memory.NewOrderRepository()
	movements := memory.NewStockMovementRepository()
	outbox := memory.NewOutboxRepository()

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:           uuid.NewString(),
		CompanyName:  "Marmara Endustri A.S.",
		Email:        "purchasing@marmara.example",
		Address:      "Organize Sanayi Bolgesi 14",
		DiscountRate: decimal.NewFromInt(10),
		CreditLimit:  decimal.NewFromInt(100000),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := customers.Create(customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	product := domain.Product{
		ID:            uuid.NewString(),
		SKU:           "SKU-API-001",
		Name:          "Hydraulic Pump",
		Unit:          "pcs",
		Price:         decimal.NewFromInt(25),
		StockQuantity: 10,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := products.Create(product); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	service := ordersvc.NewServiceWithoutMetrics(
		orders, products, customers, movements, outbox, nil, nil)

	return &apiFixture{
		router:    NewRouter(service, products, customers, nil),
		products:  products,
		customers: customers,
		customer:  customer,
		product:   product,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) createOrder(t *testing.T, qty int32) orderResponse {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/orders", createOrderRequest{
		CustomerID: f.customer.ID,
		Items: []createOrderItemRequest{
			{ProductID: f.product.ID, Quantity: qty},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var order orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode order response: %v", err)
	}
	return order
}

func TestAPI_CreateOrder(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	order := f.createOrder(t, 8)

	if order.OrderNumber == "" {
		t.Fatal("expected generated order number")
	}
	if order.Status != "Pending" {
		t.Fatalf("expected Pending status, got %s", order.Status)
	}
	// 8 × 25 = 200, скидка 10% = 20, налог 20% от 180 = 36, net 216.
	if !order.NetAmount.Equal(decimal.NewFromInt(216)) {
		t.Fatalf("expected net 216, got %s", order.NetAmount)
	}
	if order.ShippingAddress != f.customer.Address {
		t.Fatalf("expected customer address fallback, got %q", order.ShippingAddress)
	}
}

func TestAPI_CreateOrder_Validation(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	cases := []struct {
		name string
		req  createOrderRequest
		want int
	}{
		{
			name: "unknown customer",
			req: createOrderRequest{
				CustomerID: uuid.NewString(),
				Items:      []createOrderItemRequest{{ProductID: f.product.ID, Quantity: 1}},
			},
			want: http.StatusNotFound,
		},
		{
			name: "empty items",
			req:  createOrderRequest{CustomerID: f.customer.ID},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown product",
			req: createOrderRequest{
				CustomerID: f.customer.ID,
				Items:      []createOrderItemRequest{{ProductID: uuid.NewString(), Quantity: 1}},
			},
			want: http.StatusNotFound,
		},
		{
			name: "insufficient stock",
			req: createOrderRequest{
				CustomerID: f.customer.ID,
				Items:      []createOrderItemRequest{{ProductID: f.product.ID, Quantity: 999}},
			},
			want: http.StatusConflict,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/orders", tc.req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}

			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body must be JSON: %v", err)
			}
			if body.Message == "" {
				t.Fatal("error body must carry a message")
			}
		})
	}
}

func TestAPI_GetOrder(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	order := f.createOrder(t, 2)

	rec := f.do(t, http.MethodGet, "/api/orders/"+order.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/orders/number/"+order.OrderNumber, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 by number, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/orders/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", rec.Code)
	}
}

func TestAPI_ListOrders(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.createOrder(t, 1)
	f.createOrder(t, 2)

	rec := f.do(t, http.MethodGet, "/api/orders/customer/"+f.customer.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var orders []orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &orders); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}

	rec = f.do(t, http.MethodGet, "/api/orders/status/Pending?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	orders = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &orders); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(orders))
	}

	rec = f.do(t, http.MethodGet, "/api/orders/status/Bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestAPI_UpdateStatus(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	order := f.createOrder(t, 1)

	rec := f.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%s/status", order.ID),
		updateStatusRequest{Status: "Processing"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated order: %v", err)
	}
	if updated.Status != "Processing" {
		t.Fatalf("expected Processing, got %s", updated.Status)
	}

	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%s/status", uuid.NewString()),
		updateStatusRequest{Status: "Processing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown order, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%s/status", order.ID),
		updateStatusRequest{Status: "Delivered"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for illegal transition, got %d", rec.Code)
	}
}

func TestAPI_UpdateAndDeleteOrder(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	order := f.createOrder(t, 4)

	rec := f.do(t, http.MethodPut, "/api/orders/"+order.ID,
		updateOrderRequest{Notes: "call before delivery"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var updated orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated order: %v", err)
	}
	if updated.Notes != "call before delivery" {
		t.Fatalf("expected notes update, got %q", updated.Notes)
	}

	rec = f.do(t, http.MethodDelete, "/api/orders/"+order.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}

	// Удаление возвращает зарезервированный остаток.
	restored, err := f.products.GetByID(f.product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if restored.StockQuantity != 10 {
		t.Fatalf("expected stock restored to 10, got %d", restored.StockQuantity)
	}

	rec = f.do(t, http.MethodDelete, "/api/orders/"+order.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeated delete, got %d", rec.Code)
	}
}

func TestAPI_Catalog(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/products/"+f.product.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var product productResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if product.SKU != f.product.SKU {
		t.Fatalf("unexpected product: %+v", product)
	}

	rec = f.do(t, http.MethodGet, "/api/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/customers/"+f.customer.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/customers/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown customer, got %d", rec.Code)
	}
}
