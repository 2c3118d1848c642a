package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer описывает B2B-клиента. Workflow заказов читает клиента,
// но никогда его не изменяет.
type Customer struct {
	ID          string
	CompanyName string
	ContactName string
	Email       string
	PhoneNumber string
	// Address — адрес по умолчанию; подставляется в заказ,
	// если клиент не указал адрес доставки явно.
	Address string
	// TaxNumber и TaxOffice — налоговые реквизиты компании.
	TaxNumber string
	TaxOffice string
	// DiscountRate — персональная скидка клиента в процентах, 0..100.
	DiscountRate decimal.Decimal
	CreditLimit  decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
