package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must have at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item unit price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")
	// Ошибка несоответствия net-суммы формуле total - discount + tax.
	ErrNetAmountMismatch = errors.New("order net amount does not match total - discount + tax")

	// ErrCustomerNotFound возвращается, если клиент не найден в репозитории.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")

	// ErrProductInactive — попытка заказать неактивный товар.
	ErrProductInactive = errors.New("product is not active")
	// ErrInsufficientStock — запрошенное количество превышает остаток на складе.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOrderNumberTaken сигнализирует о коллизии номера заказа (unique constraint).
	ErrOrderNumberTaken = errors.New("order number already taken")
	// ErrProductSKUTaken — конфликт уникального SKU товара.
	ErrProductSKUTaken = errors.New("product sku already taken")
	// ErrCustomerConflict — конфликт уникального email или налогового номера клиента.
	ErrCustomerConflict = errors.New("customer email or tax number already taken")

	// ErrStatusUnknown — статус вне закрытого множества статусов заказа.
	ErrStatusUnknown = errors.New("unknown order status")
	// ErrStatusTransition — переход между статусами запрещён таблицей переходов.
	ErrStatusTransition = errors.New("order status transition not allowed")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// InsufficientStockError дополняет ErrInsufficientStock данными о доступном
// и запрошенном количестве.
type InsufficientStockError struct {
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// Unwrap позволяет сопоставлять ошибку с ErrInsufficientStock через errors.Is.
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// IsConflict проверяет, относится ли ошибка к нарушению уникальности.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOrderNumberTaken) ||
		errors.Is(err, ErrProductSKUTaken) ||
		errors.Is(err, ErrCustomerConflict)
}
