package domain

import "time"

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	// Create сохраняет новый товар. Возвращает ErrProductSKUTaken при дубликате SKU.
	Create(product Product) error
	// GetByID возвращает товар или ErrProductNotFound.
	GetByID(id string) (Product, error)
	// GetBySKU возвращает товар по артикулу или ErrProductNotFound.
	GetBySKU(sku string) (Product, error)
	// Update перезаписывает товар целиком.
	Update(product Product) error
	// List возвращает товары, ограничивая выборку limit (если >0).
	List(limit int) ([]Product, error)
	// ReserveStock атомарно уменьшает остаток на qty, только если остатка хватает.
	// Возвращает обновлённый товар или ErrInsufficientStock.
	ReserveStock(id string, qty int32) (Product, error)
	// ReleaseStock атомарно возвращает qty к текущему остатку (всегда аддитивно).
	ReleaseStock(id string, qty int32) (Product, error)
}

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Create сохраняет клиента. Возвращает ErrCustomerConflict при дубликате
	// email или налогового номера.
	Create(customer Customer) error
	// GetByID возвращает клиента или ErrCustomerNotFound.
	GetByID(id string) (Customer, error)
	// GetByEmail возвращает клиента по email или ErrCustomerNotFound.
	GetByEmail(email string) (Customer, error)
	// Update перезаписывает клиента целиком.
	Update(customer Customer) error
	// List возвращает клиентов, ограничивая выборку limit (если >0).
	List(limit int) ([]Customer, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Add сохраняет заказ вместе с позициями атомарно.
	// Возвращает ErrOrderNumberTaken при коллизии номера заказа.
	Add(order Order) error
	// GetByID возвращает заказ с позициями или ErrOrderNotFound.
	GetByID(id string) (Order, error)
	// GetByOrderNumber возвращает заказ с позициями по номеру или ErrOrderNotFound.
	GetByOrderNumber(number string) (Order, error)
	// ListByCustomer возвращает заказы клиента, новые первыми.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// ListByStatus возвращает заказы с указанным статусом, новые первыми.
	ListByStatus(status OrderStatus, limit int) ([]Order, error)
	// Save применяет обновления к заказу (без позиций).
	Save(order Order) error
	// Delete удаляет заказ каскадно вместе с позициями.
	Delete(id string) error
}

// StockMovementRepository хранит журнал движений остатков.
type StockMovementRepository interface {
	Append(movement StockMovement) error
	ListByProduct(productID string) ([]StockMovement, error)
	ListByOrder(orderID string) ([]StockMovement, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
	// DeleteSent удаляет до limit отправленных сообщений старше before
	// и возвращает число удалённых записей.
	DeleteSent(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
