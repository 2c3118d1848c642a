package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	// Unit — единица измерения товара (шт, кг и т.д.).
	Unit string
	// Price — цена за единицу с точностью валюты.
	Price decimal.Decimal
	// StockQuantity — доступный остаток, всегда >= 0.
	StockQuantity int32
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasStock сообщает, хватает ли остатка под запрошенное количество.
func (p *Product) HasStock(qty int32) bool {
	return p.StockQuantity >= qty
}
