package rest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

type createOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	Notes     string `json:"notes,omitempty"`
}

type createOrderRequest struct {
	CustomerID      string                   `json:"customer_id"`
	Items           []createOrderItemRequest `json:"items"`
	Notes           string                   `json:"notes,omitempty"`
	DeliveryDate    *time.Time               `json:"delivery_date,omitempty"`
	ShippingAddress string                   `json:"shipping_address,omitempty"`
}

type updateOrderRequest struct {
	Notes           string     `json:"notes,omitempty"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty"`
	ShippingAddress string     `json:"shipping_address,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Quantity   int32           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	CustomerID      string              `json:"customer_id"`
	OrderNumber     string              `json:"order_number"`
	Status          string              `json:"status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	NetAmount       decimal.Decimal     `json:"net_amount"`
	OrderDate       time.Time           `json:"order_date"`
	DeliveryDate    *time.Time          `json:"delivery_date,omitempty"`
	ShippingAddress string              `json:"shipping_address,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type productResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Unit          string          `json:"unit,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int32           `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
}

type customerResponse struct {
	ID           string          `json:"id"`
	CompanyName  string          `json:"company_name"`
	ContactName  string          `json:"contact_name,omitempty"`
	Email        string          `json:"email"`
	PhoneNumber  string          `json:"phone_number,omitempty"`
	Address      string          `json:"address,omitempty"`
	TaxNumber    string          `json:"tax_number,omitempty"`
	TaxOffice    string          `json:"tax_office,omitempty"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	CreditLimit  decimal.Decimal `json:"credit_limit"`
	IsActive     bool            `json:"is_active"`
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
			Notes:      item.Notes,
			CreatedAt:  item.CreatedAt,
		})
	}

	return orderResponse{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		OrderNumber:     order.OrderNumber,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount,
		DiscountAmount:  order.DiscountAmount,
		TaxAmount:       order.TaxAmount,
		NetAmount:       order.NetAmount,
		OrderDate:       order.OrderDate,
		DeliveryDate:    order.DeliveryDate,
		ShippingAddress: order.ShippingAddress,
		Notes:           order.Notes,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	result := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderResponse(order))
	}
	return result
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Unit:          p.Unit,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	}
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:           c.ID,
		CompanyName:  c.CompanyName,
		ContactName:  c.ContactName,
		Email:        c.Email,
		PhoneNumber:  c.PhoneNumber,
		Address:      c.Address,
		TaxNumber:    c.TaxNumber,
		TaxOffice:    c.TaxOffice,
		DiscountRate: c.DiscountRate,
		CreditLimit:  c.CreditLimit,
		IsActive:     c.IsActive,
	}
}
