package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа в B2B back office.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, ожидает обработки.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusProcessing — заказ взят в обработку.
	OrderStatusProcessing OrderStatus = "Processing"
	// OrderStatusShipped — заказ отгружен клиенту.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusDelivered — заказ доставлен, терминальный статус.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled — заказ отменён, терминальный статус.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// statusTransitions — закрытая таблица разрешённых переходов между статусами.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// Valid сообщает, принадлежит ли статус закрытому множеству.
func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo проверяет переход по таблице статусов.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// OrderID — заказ-владелец; позиция живёт и умирает вместе с ним.
	OrderID string
	// ProductID — ссылка на товар каталога (restrict delete).
	ProductID string
	// Quantity — количество единиц товара, строго > 0.
	Quantity int32
	// UnitPrice — снимок цены товара на момент заказа, не перечитывается.
	UnitPrice decimal.Decimal
	// TotalPrice — построчная сумма без скидки: UnitPrice * Quantity.
	// Скидка и налог живут только на уровне агрегатов заказа.
	TotalPrice decimal.Decimal
	// Notes — опциональный комментарий к позиции.
	Notes string
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID         string
	CustomerID string
	// OrderNumber — человекочитаемый уникальный номер вида ORD-YYYYMMDD-####.
	OrderNumber string
	Status      OrderStatus
	// Денежные агрегаты заказа: суммы построчных значений.
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	// NetAmount — итог к оплате: TotalAmount - DiscountAmount + TaxAmount.
	NetAmount       decimal.Decimal
	OrderDate       time.Time
	DeliveryDate    *time.Time
	ShippingAddress string
	Notes           string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	// Сверяем сумму заказа с суммой позиций: qty * unit price.
	calc := decimal.Zero
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if !item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity))) {
			errs = append(errs, ErrAmountMismatch)
		}
		calc = calc.Add(item.TotalPrice)
	}
	if !calc.Equal(o.TotalAmount) {
		errs = append(errs, ErrAmountMismatch)
	}

	if !o.NetAmount.Equal(o.TotalAmount.Sub(o.DiscountAmount).Add(o.TaxAmount)) {
		errs = append(errs, ErrNetAmountMismatch)
	}

	return errs
}
