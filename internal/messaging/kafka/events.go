package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Order события
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderUpdated       EventType = "order.updated"
	EventTypeOrderDeleted       EventType = "order.deleted"

	// Stock события
	EventTypeStockReserved EventType = "stock.reserved"
	EventTypeStockReleased EventType = "stock.released"
)

// Topics для Kafka
const (
	TopicOrderEvents = "b2b.order.events"
	TopicStockEvents = "b2b.stock.events"
	// TopicOrderEventsDLQ принимает события, которые не удалось
	// опубликовать после всех retry.
	TopicOrderEventsDLQ = "b2b.order.events.dlq"
)

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType   EventType              `json:"event_type"`
	OrderID     string                 `json:"order_id"`
	OrderNumber string                 `json:"order_number"`
	CustomerID  string                 `json:"customer_id"`
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// StockEvent представляет движение остатка, порождённое заказом
type StockEvent struct {
	EventType EventType `json:"event_type"`
	ProductID string    `json:"product_id"`
	OrderID   string    `json:"order_id,omitempty"`
	Quantity  int32     `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, orderNumber, customerID, status string, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:   eventType,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		CustomerID:  customerID,
		Status:      status,
		Timestamp:   time.Now().UTC(),
		Metadata:    metadata,
	}
}

// NewStockEvent создает новое событие движения остатка
func NewStockEvent(eventType EventType, productID, orderID string, quantity int32) *StockEvent {
	return &StockEvent{
		EventType: eventType,
		ProductID: productID,
		OrderID:   orderID,
		Quantity:  quantity,
		Timestamp: time.Now().UTC(),
	}
}
