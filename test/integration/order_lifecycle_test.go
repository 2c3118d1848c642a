package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
	ordersvc "github.com/adosoftyazilim/blrb2b/internal/service/order"
	"github.com/adosoftyazilim/blrb2b/internal/storage/memory"
)

// OrderLifecycleTestSuite тестирует полный жизненный цикл заказа:
// создание с резервом остатков, смену статусов и удаление с возвратом.
type OrderLifecycleTestSuite struct {
	suite.Suite
	service   *ordersvc.Service
	orders    domain.OrderRepository
	products  domain.ProductRepository
	customers domain.CustomerRepository
	movements domain.StockMovementRepository
	outbox    domain.OutboxRepository

	customer domain.Customer
	pump     domain.Product
	valve    domain.Product
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	suite.orders = memory.NewOrderRepository()
	suite.products = memory.NewProductRepository()
	suite.customers = memory.NewCustomerRepository()
	suite.movements = memory.NewStockMovementRepository()
	suite.outbox = memory.NewOutboxRepository()

	suite.service = ordersvc.NewServiceWithoutMetrics(
		suite.orders,
		suite.products,
		suite.customers,
		suite.movements,
		suite.outbox,
		nil,
		logger,
	)

	now := time.Now().UTC()
	suite.customer = domain.Customer{
		ID:           uuid.NewString(),
		CompanyName:  "Ege Hidrolik San. Tic. Ltd.",
		Email:        "satinalma@egehidrolik.example",
		Address:      "Ataturk OSB 10021 Sk. No:5",
		DiscountRate: decimal.NewFromInt(10),
		CreditLimit:  decimal.NewFromInt(250000),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(suite.T(), suite.customers.Create(suite.customer))

	suite.pump = domain.Product{
		ID:            uuid.NewString(),
		SKU:           "PMP-220",
		Name:          "Hydraulic Pump 220V",
		Unit:          "pcs",
		Price:         decimal.NewFromInt(100),
		StockQuantity: 20,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(suite.T(), suite.products.Create(suite.pump))

	suite.valve = domain.Product{
		ID:            uuid.NewString(),
		SKU:           "VLV-034",
		Name:          "Control Valve 3/4",
		Unit:          "pcs",
		Price:         decimal.NewFromInt(40),
		StockQuantity: 5,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(suite.T(), suite.products.Create(suite.valve))
}

func (suite *OrderLifecycleTestSuite) TestSuccessfulOrderLifecycle() {
	t := suite.T()

	// 1. Создаём заказ из двух позиций.
	order, err := suite.service.Create(ordersvc.CreateRequest{
		CustomerID: suite.customer.ID,
		Items: []ordersvc.CreateItem{
			{ProductID: suite.pump.ID, Quantity: 2},
			{ProductID: suite.valve.ID, Quantity: 5},
		},
		Notes: "deliver to warehouse B",
	})
	require.NoError(t, err)
	require.NotEmpty(t, order.OrderNumber)
	require.Equal(t, domain.OrderStatusPending, order.Status)

	// total = 2×100 + 5×40 = 400; скидка 10% = 40; налог 20% от 360 = 72; net 432.
	require.True(t, order.TotalAmount.Equal(decimal.NewFromInt(400)),
		"total: %s", order.TotalAmount)
	require.True(t, order.DiscountAmount.Equal(decimal.NewFromInt(40)),
		"discount: %s", order.DiscountAmount)
	require.True(t, order.TaxAmount.Equal(decimal.NewFromInt(72)),
		"tax: %s", order.TaxAmount)
	require.True(t, order.NetAmount.Equal(decimal.NewFromInt(432)),
		"net: %s", order.NetAmount)

	// 2. Остатки зарезервированы.
	pump, err := suite.products.GetByID(suite.pump.ID)
	require.NoError(t, err)
	require.EqualValues(t, 18, pump.StockQuantity)

	valve, err := suite.products.GetByID(suite.valve.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, valve.StockQuantity)

	// 3. Журнал движений содержит out-записи по обеим позициям.
	movements, err := suite.movements.ListByOrder(order.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		require.Equal(t, domain.MovementTypeOut, m.MovementType)
	}

	// 4. Проводим заказ по статусам до доставки.
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		updated, err := suite.service.UpdateStatus(order.ID, status)
		require.NoError(t, err)
		require.True(t, updated)
	}

	final, err := suite.service.GetByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusDelivered, final.Status)

	// 5. Outbox содержит резерв по каждой позиции, событие создания
	// и по событию на каждый переход.
	pending, err := suite.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 6)

	types := make([]string, 0, len(pending))
	for _, msg := range pending {
		types = append(types, msg.EventType)
	}
	require.Equal(t, []string{
		"stock.reserved",
		"stock.reserved",
		"order.created",
		"order.status_changed",
		"order.status_changed",
		"order.status_changed",
	}, types)
	require.Equal(t, "stock", pending[0].AggregateType)
	require.Equal(t, "order", pending[2].AggregateType)
}

func (suite *OrderLifecycleTestSuite) TestInsufficientStockRollsBackReservations() {
	t := suite.T()

	// Вторая позиция превышает остаток, заказ должен не состояться целиком.
	_, err := suite.service.Create(ordersvc.CreateRequest{
		CustomerID: suite.customer.ID,
		Items: []ordersvc.CreateItem{
			{ProductID: suite.pump.ID, Quantity: 3},
			{ProductID: suite.valve.ID, Quantity: 6},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.EqualValues(t, 5, stockErr.Available)
	require.EqualValues(t, 6, stockErr.Requested)

	// Резерв первой позиции компенсирован.
	pump, err := suite.products.GetByID(suite.pump.ID)
	require.NoError(t, err)
	require.EqualValues(t, 20, pump.StockQuantity)

	// Заказ не сохранён.
	orders, err := suite.orders.ListByCustomer(suite.customer.ID, 0)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func (suite *OrderLifecycleTestSuite) TestDeleteRestoresStock() {
	t := suite.T()

	order, err := suite.service.Create(ordersvc.CreateRequest{
		CustomerID: suite.customer.ID,
		Items: []ordersvc.CreateItem{
			{ProductID: suite.pump.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)

	pump, err := suite.products.GetByID(suite.pump.ID)
	require.NoError(t, err)
	require.EqualValues(t, 16, pump.StockQuantity)

	deleted, err := suite.service.Delete(order.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	pump, err = suite.products.GetByID(suite.pump.ID)
	require.NoError(t, err)
	require.EqualValues(t, 20, pump.StockQuantity)

	// Повторное удаление сообщает об отсутствии заказа без ошибки.
	deleted, err = suite.service.Delete(order.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	// Журнал содержит out при создании и in при удалении.
	movements, err := suite.movements.ListByProduct(suite.pump.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	require.Equal(t, domain.MovementTypeOut, movements[0].MovementType)
	require.Equal(t, domain.MovementTypeIn, movements[1].MovementType)
}

func (suite *OrderLifecycleTestSuite) TestCancelledOrderIsTerminal() {
	t := suite.T()

	order, err := suite.service.Create(ordersvc.CreateRequest{
		CustomerID: suite.customer.ID,
		Items: []ordersvc.CreateItem{
			{ProductID: suite.valve.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	updated, err := suite.service.UpdateStatus(order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	require.True(t, updated)

	_, err = suite.service.UpdateStatus(order.ID, domain.OrderStatusProcessing)
	require.ErrorIs(t, err, domain.ErrStatusTransition)
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
