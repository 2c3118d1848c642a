package domain

import "time"

// MovementType отражает направление движения остатка.
type MovementType string

const (
	// MovementTypeIn — приход: возврат остатка при удалении заказа.
	MovementTypeIn MovementType = "in"
	// MovementTypeOut — расход: резервирование остатка под заказ.
	MovementTypeOut MovementType = "out"
)

// StockMovement — запись журнала движений остатков.
// Журнал только дописывается, записи не изменяются.
type StockMovement struct {
	ID        string
	ProductID string
	// OrderID заполняется для движений, порождённых заказом.
	OrderID      string
	Quantity     int32
	MovementType MovementType
	MovementDate time.Time
	Notes        string
}
