package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:          "order-1",
		CustomerID:  "customer-1",
		OrderNumber: "ORD-20260831-1234",
		Status:      domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{
				ID:         "item-1",
				OrderID:    "order-1",
				ProductID:  "product-1",
				Quantity:   2,
				UnitPrice:  decimal.NewFromInt(100),
				TotalPrice: decimal.NewFromInt(200),
				CreatedAt:  now,
			},
		},
		TotalAmount:    decimal.NewFromInt(200),
		DiscountAmount: decimal.NewFromInt(20),
		TaxAmount:      decimal.NewFromInt(36),
		NetAmount:      decimal.NewFromInt(216),
		OrderDate:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerID = ""
			},
		},
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Quantity = 0
			},
		},
		{
			name: "negative unit price",
			mut: func(o *domain.Order) {
				o.Items[0].UnitPrice = decimal.NewFromInt(-5)
			},
		},
		{
			name: "line total mismatch",
			mut: func(o *domain.Order) {
				o.Items[0].TotalPrice = decimal.NewFromInt(999)
			},
		},
		{
			name: "total mismatch",
			mut: func(o *domain.Order) {
				o.TotalAmount = decimal.NewFromInt(999)
			},
		},
		{
			name: "net mismatch",
			mut: func(o *domain.Order) {
				o.NetAmount = decimal.NewFromInt(999)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			// Изменяем состояние согласно сценарию.
			mutOrder := order
			tc.mut(&mutOrder)

			if len(mutOrder.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	} {
		if !status.Valid() {
			t.Fatalf("expected status %s to be valid", status)
		}
	}
	if domain.OrderStatus("Refunded").Valid() {
		t.Fatal("expected unknown status to be invalid")
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}{
		{domain.OrderStatusPending, domain.OrderStatusProcessing, true},
		{domain.OrderStatusPending, domain.OrderStatusCancelled, true},
		{domain.OrderStatusPending, domain.OrderStatusShipped, false},
		{domain.OrderStatusProcessing, domain.OrderStatusShipped, true},
		{domain.OrderStatusProcessing, domain.OrderStatusDelivered, false},
		{domain.OrderStatusShipped, domain.OrderStatusDelivered, true},
		{domain.OrderStatusDelivered, domain.OrderStatusCancelled, false},
		{domain.OrderStatusCancelled, domain.OrderStatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}
