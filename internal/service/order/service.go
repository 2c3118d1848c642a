package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
	"github.com/adosoftyazilim/blrb2b/internal/messaging/kafka"
	"github.com/adosoftyazilim/blrb2b/internal/metrics"
)

// taxRate — фиксированная ставка НДС 20%.
var taxRate = decimal.NewFromFloat(0.20)

// maxNumberAttempts ограничивает retry при коллизии номера заказа.
const maxNumberAttempts = 3

// CreateItem описывает одну позицию запроса на создание заказа.
type CreateItem struct {
	ProductID string
	Quantity  int32
	Notes     string
}

// CreateRequest описывает запрос на создание заказа.
type CreateRequest struct {
	CustomerID      string
	Items           []CreateItem
	Notes           string
	DeliveryDate    *time.Time
	ShippingAddress string
}

// UpdateRequest описывает изменяемые поля существующего заказа.
// Статус меняется отдельной операцией UpdateStatus.
type UpdateRequest struct {
	Notes           string
	DeliveryDate    *time.Time
	ShippingAddress string
}

// Service — workflow engine заказов: создание с резервированием остатков,
// вычислением скидки и налога, смена статусов и удаление с возвратом остатков.
type Service struct {
	orders    domain.OrderRepository
	products  domain.ProductRepository
	customers domain.CustomerRepository
	movements domain.StockMovementRepository
	outbox    domain.OutboxRepository
	numbers   *NumberGenerator
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
	now       func() time.Time
}

// NewService создаёт рабочий экземпляр workflow engine.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	movements domain.StockMovementRepository,
	outbox domain.OutboxRepository,
	numbers *NumberGenerator,
	logger *log.Entry,
) *Service {
	svc := newService(orders, products, customers, movements, outbox, numbers, logger)
	svc.metrics = metrics.NewOrderMetrics()
	return svc
}

// NewServiceWithoutMetrics создаёт workflow engine без метрик (для тестов).
func NewServiceWithoutMetrics(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	movements domain.StockMovementRepository,
	outbox domain.OutboxRepository,
	numbers *NumberGenerator,
	logger *log.Entry,
) *Service {
	return newService(orders, products, customers, movements, outbox, numbers, logger)
}

func newService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	movements domain.StockMovementRepository,
	outbox domain.OutboxRepository,
	numbers *NumberGenerator,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	if numbers == nil {
		numbers = NewNumberGenerator(nil, nil)
	}
	return &Service{
		orders:    orders,
		products:  products,
		customers: customers,
		movements: movements,
		outbox:    outbox,
		numbers:   numbers,
		logger:    logger,
		now:       time.Now,
	}
}

// Create создаёт заказ: валидирует клиента и позиции, резервирует остатки,
// считает суммы и сохраняет заказ с позициями атомарно.
//
// Резерв применяется на каждую позицию сразу после её валидации. При ошибке
// на позиции k резервы позиций 1..k-1 снимаются компенсирующим release,
// поэтому неудачное создание не оставляет утечек остатков.
func (s *Service) Create(req CreateRequest) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordCreateDuration(time.Since(start))
		}
	}()

	customer, err := s.customers.GetByID(req.CustomerID)
	if err != nil {
		s.recordFailure("customer_not_found")
		return domain.Order{}, fmt.Errorf("lookup customer %q: %w", req.CustomerID, err)
	}

	if len(req.Items) == 0 {
		s.recordFailure("no_items")
		return domain.Order{}, domain.ErrItemsRequired
	}

	now := s.now().UTC()
	orderID := uuid.NewString()

	shippingAddress := req.ShippingAddress
	if shippingAddress == "" {
		shippingAddress = customer.Address
	}

	var (
		totalAmount    = decimal.Zero
		discountAmount = decimal.Zero
		taxAmount      = decimal.Zero
		items          = make([]domain.OrderItem, 0, len(req.Items))
	)

	for idx, itemReq := range req.Items {
		if itemReq.Quantity <= 0 {
			s.rollbackReservations(orderID, items)
			s.recordFailure("invalid_quantity")
			return domain.Order{}, fmt.Errorf("item[%d]: %w", idx, domain.ErrItemQtyInvalid)
		}

		product, err := s.products.GetByID(itemReq.ProductID)
		if err != nil {
			s.rollbackReservations(orderID, items)
			s.recordFailure("product_not_found")
			return domain.Order{}, fmt.Errorf("lookup product %q: %w", itemReq.ProductID, err)
		}
		if !product.IsActive {
			s.rollbackReservations(orderID, items)
			s.recordFailure("product_inactive")
			return domain.Order{}, fmt.Errorf("product %q: %w", product.Name, domain.ErrProductInactive)
		}
		if !product.HasStock(itemReq.Quantity) {
			s.rollbackReservations(orderID, items)
			s.recordFailure("insufficient_stock")
			return domain.Order{}, &domain.InsufficientStockError{
				ProductName: product.Name,
				Available:   product.StockQuantity,
				Requested:   itemReq.Quantity,
			}
		}

		// Цена снимается с товара в момент заказа и больше не перечитывается.
		lineTotal := product.Price.Mul(decimal.NewFromInt32(itemReq.Quantity))
		lineDiscount := lineTotal.Mul(customer.DiscountRate).Div(decimal.NewFromInt(100))
		lineTax := lineTotal.Sub(lineDiscount).Mul(taxRate)

		// Резервируем остаток условным декрементом на границе хранилища:
		// под гонкой остаток мог уменьшиться после проверки выше.
		if _, err := s.products.ReserveStock(product.ID, itemReq.Quantity); err != nil {
			s.rollbackReservations(orderID, items)
			if errors.Is(err, domain.ErrInsufficientStock) {
				s.recordFailure("insufficient_stock")
				available := product.StockQuantity
				if current, lookupErr := s.products.GetByID(product.ID); lookupErr == nil {
					available = current.StockQuantity
				}
				return domain.Order{}, &domain.InsufficientStockError{
					ProductName: product.Name,
					Available:   available,
					Requested:   itemReq.Quantity,
				}
			}
			s.recordFailure("reserve_stock")
			return domain.Order{}, fmt.Errorf("reserve stock for product %q: %w", product.ID, err)
		}
		if s.metrics != nil {
			s.metrics.RecordStockReserved(itemReq.Quantity)
		}
		s.appendMovement(domain.MovementTypeOut, product.ID, orderID, itemReq.Quantity, "order reservation")
		s.enqueueStockEvent(kafka.EventTypeStockReserved, product.ID, orderID, itemReq.Quantity)

		// TotalPrice позиции хранит сумму без скидки: скидка и налог
		// живут только в агрегатах заказа.
		items = append(items, domain.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			ProductID:  product.ID,
			Quantity:   itemReq.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: lineTotal,
			Notes:      itemReq.Notes,
			CreatedAt:  now,
		})
		totalAmount = totalAmount.Add(lineTotal)
		discountAmount = discountAmount.Add(lineDiscount)
		taxAmount = taxAmount.Add(lineTax)
	}

	order := domain.Order{
		ID:              orderID,
		CustomerID:      customer.ID,
		Status:          domain.OrderStatusPending,
		TotalAmount:     totalAmount,
		DiscountAmount:  discountAmount,
		TaxAmount:       taxAmount,
		NetAmount:       totalAmount.Sub(discountAmount).Add(taxAmount),
		OrderDate:       now,
		DeliveryDate:    req.DeliveryDate,
		ShippingAddress: shippingAddress,
		Notes:           req.Notes,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Коллизия номера разрешается пересозданием номера с ограниченным retry.
	var persistErr error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		order.OrderNumber = s.numbers.Next()
		persistErr = s.orders.Add(order)
		if persistErr == nil {
			break
		}
		if !errors.Is(persistErr, domain.ErrOrderNumberTaken) {
			break
		}
		if s.metrics != nil {
			s.metrics.RecordNumberRetry()
		}
		s.logger.WithFields(log.Fields{
			"order_number": order.OrderNumber,
			"attempt":      attempt,
		}).Warn("order number collision, retrying")
	}
	if persistErr != nil {
		s.rollbackReservations(orderID, items)
		s.recordFailure("persist")
		return domain.Order{}, fmt.Errorf("persist order: %w", persistErr)
	}

	s.enqueueOrderEvent(kafka.EventTypeOrderCreated, order, map[string]interface{}{
		"items_count": len(order.Items),
		"net_amount":  order.NetAmount.String(),
	})

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
		s.metrics.RecordOrderNetAmount(order.NetAmount.InexactFloat64())
	}
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"customer_id":  order.CustomerID,
		"net_amount":   order.NetAmount.String(),
	}).Info("order created")

	created, err := s.orders.GetByOrderNumber(order.OrderNumber)
	if err != nil {
		s.logger.WithError(err).WithField("order_number", order.OrderNumber).
			Warn("reload created order failed, returning local copy")
		return order, nil
	}
	return created, nil
}

// UpdateStatus переводит заказ в новый статус по закрытой таблице переходов.
// Возвращает (false, nil), если заказа нет.
func (s *Service) UpdateStatus(orderID string, status domain.OrderStatus) (bool, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup order %q: %w", orderID, err)
	}

	if !status.Valid() {
		return false, fmt.Errorf("status %q: %w", status, domain.ErrStatusUnknown)
	}
	if !order.Status.CanTransitionTo(status) {
		return false, fmt.Errorf("%s -> %s: %w", order.Status, status, domain.ErrStatusTransition)
	}

	previous := order.Status
	order.Status = status
	order.UpdatedAt = s.now().UTC()
	if err := s.orders.Save(order); err != nil {
		return false, fmt.Errorf("save order: %w", err)
	}

	s.enqueueOrderEvent(kafka.EventTypeOrderStatusChanged, order, map[string]interface{}{
		"previous_status": string(previous),
	})
	if s.metrics != nil {
		s.metrics.RecordStatusUpdate(string(status))
	}
	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"from":     previous,
		"to":       status,
	}).Info("order status updated")

	return true, nil
}

// Update изменяет комментарий, дату доставки и адрес доставки заказа.
func (s *Service) Update(orderID string, req UpdateRequest) (domain.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("lookup order %q: %w", orderID, err)
	}

	order.Notes = req.Notes
	order.DeliveryDate = req.DeliveryDate
	order.ShippingAddress = req.ShippingAddress
	order.UpdatedAt = s.now().UTC()

	if err := s.orders.Save(order); err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}

	s.enqueueOrderEvent(kafka.EventTypeOrderUpdated, order, nil)
	return s.orders.GetByID(order.ID)
}

// Delete удаляет заказ, возвращая остатки по каждой позиции количеством
// в количество. Возврат всегда аддитивен к текущему остатку.
// Возвращает (false, nil), если заказа нет.
func (s *Service) Delete(orderID string) (bool, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup order %q: %w", orderID, err)
	}

	for _, item := range order.Items {
		if _, err := s.products.ReleaseStock(item.ProductID, item.Quantity); err != nil {
			return false, fmt.Errorf("release stock for product %q: %w", item.ProductID, err)
		}
		if s.metrics != nil {
			s.metrics.RecordStockReleased(item.Quantity)
		}
		s.appendMovement(domain.MovementTypeIn, item.ProductID, order.ID, item.Quantity, "order deleted")
		s.enqueueStockEvent(kafka.EventTypeStockReleased, item.ProductID, order.ID, item.Quantity)
	}

	if err := s.orders.Delete(order.ID); err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}

	s.enqueueOrderEvent(kafka.EventTypeOrderDeleted, order, map[string]interface{}{
		"items_count": len(order.Items),
	})
	if s.metrics != nil {
		s.metrics.RecordOrderDeleted()
	}
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	}).Info("order deleted, stock restored")

	return true, nil
}

// GetByID возвращает заказ с позициями.
func (s *Service) GetByID(orderID string) (domain.Order, error) {
	return s.orders.GetByID(orderID)
}

// GetByNumber возвращает заказ с позициями по номеру.
func (s *Service) GetByNumber(number string) (domain.Order, error) {
	return s.orders.GetByOrderNumber(number)
}

// ListByCustomer возвращает заказы клиента, новые первыми.
func (s *Service) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	return s.orders.ListByCustomer(customerID, limit)
}

// ListByStatus возвращает заказы с указанным статусом.
func (s *Service) ListByStatus(status domain.OrderStatus, limit int) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, domain.ErrStatusUnknown)
	}
	return s.orders.ListByStatus(status, limit)
}

// rollbackReservations снимает уже применённые резервы при ошибке создания.
// Компенсация best-effort: ошибки release логируются, но не маскируют
// исходную ошибку создания.
func (s *Service) rollbackReservations(orderID string, items []domain.OrderItem) {
	for _, item := range items {
		if _, err := s.products.ReleaseStock(item.ProductID, item.Quantity); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id":   orderID,
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
			}).Error("rollback stock release failed")
			continue
		}
		if s.metrics != nil {
			s.metrics.RecordStockReleased(item.Quantity)
		}
		s.appendMovement(domain.MovementTypeIn, item.ProductID, orderID, item.Quantity, "create rollback")
		s.enqueueStockEvent(kafka.EventTypeStockReleased, item.ProductID, orderID, item.Quantity)
	}
}

// appendMovement дописывает запись в журнал движений остатков.
// Журнал вторичен к заказу: ошибка записи логируется и не прерывает workflow.
func (s *Service) appendMovement(movementType domain.MovementType, productID, orderID string, qty int32, notes string) {
	if s.movements == nil {
		return
	}
	movement := domain.StockMovement{
		ID:           uuid.NewString(),
		ProductID:    productID,
		OrderID:      orderID,
		Quantity:     qty,
		MovementType: movementType,
		MovementDate: s.now().UTC(),
		Notes:        notes,
	}
	if err := s.movements.Append(movement); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"product_id": productID,
			"order_id":   orderID,
			"type":       movementType,
		}).Warn("append stock movement failed")
	}
}

// recordFailure учитывает неудачное создание заказа с причиной.
func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordOrderFailed(reason)
	}
}

func (s *Service) enqueueOrderEvent(eventType kafka.EventType, order domain.Order, metadata map[string]interface{}) {
	if s.outbox == nil {
		return
	}

	event := kafka.NewOrderEvent(eventType, order.ID, order.OrderNumber, order.CustomerID, string(order.Status), metadata)
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("marshal order event failed")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("enqueue outbox event failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordOutboxEnqueued()
	}
}

// enqueueStockEvent ставит событие движения остатка в outbox. События
// зеркалят журнал движений: rollback даёт пару reserved/released,
// поэтому поток событий сходится с фактическим остатком.
func (s *Service) enqueueStockEvent(eventType kafka.EventType, productID, orderID string, qty int32) {
	if s.outbox == nil {
		return
	}

	event := kafka.NewStockEvent(eventType, productID, orderID, qty)
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Warn("marshal stock event failed")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "stock",
		AggregateID:   productID,
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Warn("enqueue outbox event failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordOutboxEnqueued()
	}
}
