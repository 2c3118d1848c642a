package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики order workflow.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated  prometheus.Counter
	ordersFailed   *prometheus.CounterVec
	ordersDeleted  prometheus.Counter
	statusUpdates  *prometheus.CounterVec
	numberRetries  prometheus.Counter
	outboxEnqueued prometheus.Counter

	// Движения остатков
	stockReserved prometheus.Counter
	stockReleased prometheus.Counter

	// Гистограммы
	createDuration prometheus.Histogram
	orderNetAmount prometheus.Histogram
}

// NewOrderMetrics создаёт новый экземпляр метрик order workflow.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "b2b_orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		ordersFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "b2b_orders_failed_total",
			Help: "Total number of order creations failed grouped by reason",
		}, []string{"reason"}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "b2b_orders_deleted_total",
			Help: "Total number of orders deleted with stock restored",
		}),
		statusUpdates: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "b2b_order_status_updates_total",
			Help: "Total number of order status updates grouped by target status",
		}, []string{"status"}),
		numberRetries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "b2b_order_number_retries_total",
			Help: "Total number of order number collision retries",
		}),
		outboxEnqueued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "b2b_order_outbox_enqueued_total",
			Help: "Total number of order events enqueued to transactional outbox",
		}),
		stockReserved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "b2b_stock_reserved_units_total",
			Help: "Total units of stock reserved by order creation",
		}),
		stockReleased: registerCounter(registerer, prometheus.CounterOpts{
			Name: "b2b_stock_released_units_total",
			Help: "Total units of stock released by order deletion or rollback",
		}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "b2b_order_create_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		orderNetAmount: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "b2b_order_net_amount",
			Help:    "Net amount distribution of created orders",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000, 100000},
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderFailed увеличивает счётчик неудачных созданий с причиной.
func (m *OrderMetrics) RecordOrderFailed(reason string) {
	m.ordersFailed.WithLabelValues(reason).Inc()
}

// RecordOrderDeleted увеличивает счётчик удалённых заказов.
func (m *OrderMetrics) RecordOrderDeleted() {
	m.ordersDeleted.Inc()
}

// RecordStatusUpdate увеличивает счётчик обновлений статуса.
func (m *OrderMetrics) RecordStatusUpdate(status string) {
	m.statusUpdates.WithLabelValues(status).Inc()
}

// RecordNumberRetry увеличивает счётчик коллизий номера заказа.
func (m *OrderMetrics) RecordNumberRetry() {
	m.numberRetries.Inc()
}

// RecordOutboxEnqueued увеличивает счётчик событий, поставленных в outbox.
func (m *OrderMetrics) RecordOutboxEnqueued() {
	m.outboxEnqueued.Inc()
}

// RecordStockReserved учитывает зарезервированные единицы остатка.
func (m *OrderMetrics) RecordStockReserved(qty int32) {
	m.stockReserved.Add(float64(qty))
}

// RecordStockReleased учитывает возвращённые единицы остатка.
func (m *OrderMetrics) RecordStockReleased(qty int32) {
	m.stockReleased.Add(float64(qty))
}

// RecordCreateDuration записывает время выполнения создания заказа.
func (m *OrderMetrics) RecordCreateDuration(duration time.Duration) {
	m.createDuration.Observe(duration.Seconds())
}

// RecordOrderNetAmount записывает net-сумму созданного заказа.
func (m *OrderMetrics) RecordOrderNetAmount(amount float64) {
	m.orderNetAmount.Observe(amount)
}
