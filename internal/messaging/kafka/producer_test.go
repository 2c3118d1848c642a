package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishEvent(t *testing.T) {
	// Создаем mock producer
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	// Настраиваем ожидания
	mockProducer.ExpectSendMessageAndSucceed()

	// Создаем тестовое событие
	event := NewOrderEvent(
		EventTypeOrderCreated,
		"order-123",
		"ORD-20260831-0001",
		"cust-1",
		"Pending",
		map[string]interface{}{
			"net_amount": "432.00",
		},
	)

	// Публикуем событие
	err := producer.PublishEvent(TopicOrderEvents, "order-123", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Проверяем, что все ожидания выполнены
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	// Создаем mock producer с ошибкой
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	// Настраиваем ожидание ошибки
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderEvent(
		EventTypeOrderDeleted,
		"order-123",
		"ORD-20260831-0001",
		"cust-1",
		"Pending",
		nil,
	)

	// Публикуем событие
	err := producer.PublishEvent(TopicOrderEvents, "order-123", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderEvent(t *testing.T) {
	orderID := "order-123"
	orderNumber := "ORD-20260831-0042"
	customerID := "cust-1"
	status := "Processing"
	metadata := map[string]interface{}{
		"previous_status": "Pending",
	}

	event := NewOrderEvent(EventTypeOrderStatusChanged, orderID, orderNumber, customerID, status, metadata)

	if event.EventType != EventTypeOrderStatusChanged {
		t.Errorf("expected event type %s, got %s", EventTypeOrderStatusChanged, event.EventType)
	}

	if event.OrderID != orderID {
		t.Errorf("expected order id %s, got %s", orderID, event.OrderID)
	}

	if event.OrderNumber != orderNumber {
		t.Errorf("expected order number %s, got %s", orderNumber, event.OrderNumber)
	}

	if event.CustomerID != customerID {
		t.Errorf("expected customer id %s, got %s", customerID, event.CustomerID)
	}

	if event.Status != status {
		t.Errorf("expected status %s, got %s", status, event.Status)
	}

	if event.Metadata["previous_status"] != "Pending" {
		t.Error("metadata not set correctly")
	}

	// Проверяем, что timestamp установлен
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	// Проверяем, что timestamp близок к текущему времени
	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}

func TestParseRequiredAcks(t *testing.T) {
	cases := []struct {
		value   string
		want    sarama.RequiredAcks
		wantErr bool
	}{
		{value: "", want: sarama.WaitForAll},
		{value: "all", want: sarama.WaitForAll},
		{value: "local", want: sarama.WaitForLocal},
		{value: "none", want: sarama.NoResponse},
		{value: "quorum", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseRequiredAcks(tc.value)
		if tc.wantErr {
			if err == nil {
				t.Errorf("value %q: expected error", tc.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("value %q: unexpected error: %v", tc.value, err)
			continue
		}
		if got != tc.want {
			t.Errorf("value %q: expected %d, got %d", tc.value, tc.want, got)
		}
	}
}

// Идемпотентность включается только при acks=all: sarama требует для неё
// WaitForAll и один in-flight запрос.
func TestBuildProducerConfig(t *testing.T) {
	strict := buildProducerConfig(DefaultProducerOptions())
	if strict.Producer.RequiredAcks != sarama.WaitForAll {
		t.Errorf("expected WaitForAll, got %d", strict.Producer.RequiredAcks)
	}
	if !strict.Producer.Idempotent {
		t.Error("expected idempotent producer for acks=all")
	}
	if strict.Net.MaxOpenRequests != 1 {
		t.Errorf("expected 1 in-flight request, got %d", strict.Net.MaxOpenRequests)
	}
	if strict.Producer.Retry.Max != 5 {
		t.Errorf("expected 5 retries, got %d", strict.Producer.Retry.Max)
	}

	relaxed := buildProducerConfig(ProducerOptions{
		RequiredAcks: sarama.WaitForLocal,
		RetryMax:     8,
	})
	if relaxed.Producer.Idempotent {
		t.Error("idempotence must be off for acks=local")
	}
	if relaxed.Producer.Retry.Max != 8 {
		t.Errorf("expected 8 retries, got %d", relaxed.Producer.Retry.Max)
	}

	defaulted := buildProducerConfig(ProducerOptions{RequiredAcks: sarama.WaitForAll})
	if defaulted.Producer.Retry.Max != 5 {
		t.Errorf("expected default retry max 5, got %d", defaulted.Producer.Retry.Max)
	}
}

func TestNewStockEvent(t *testing.T) {
	event := NewStockEvent(EventTypeStockReserved, "prod-9", "order-123", 4)

	if event.EventType != EventTypeStockReserved {
		t.Errorf("expected event type %s, got %s", EventTypeStockReserved, event.EventType)
	}

	if event.ProductID != "prod-9" {
		t.Errorf("expected product id prod-9, got %s", event.ProductID)
	}

	if event.OrderID != "order-123" {
		t.Errorf("expected order id order-123, got %s", event.OrderID)
	}

	if event.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", event.Quantity)
	}

	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}
