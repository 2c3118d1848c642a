package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndSucceed()

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-outbox-publisher-test"),
	}
	publisher := NewOutboxPublisher(producer, TopicOrderEvents)

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: "order",
		AggregateID:   "order-123",
		EventType:     "order.status_changed",
		Payload:       []byte(`{"status":"Processing"}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-outbox-publisher-test"),
	}
	publisher := NewOutboxPublisher(producer, TopicOrderEvents)

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: "order",
		AggregateID:   "order-234",
		EventType:     "order.deleted",
		Payload:       []byte(`{"restored":true}`),
	})
	if err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, TopicOrderEvents)
	if err := publisher.Publish(domain.OutboxMessage{ID: "outbox-3"}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}

// Основной паблишер раскладывает сообщения по topic согласно aggregate_type:
// stock-события уходят в TopicStockEvents, order-события — в TopicOrderEvents.
func TestOutboxEventPublisher_RoutesByAggregateType(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicStockEvents {
			t.Errorf("expected topic %s, got %s", TopicStockEvents, msg.Topic)
		}
		return nil
	})
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderEvents {
			t.Errorf("expected topic %s, got %s", TopicOrderEvents, msg.Topic)
		}
		return nil
	})

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-outbox-publisher-test"),
	}
	publisher := NewOutboxEventPublisher(producer)

	if err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-4",
		AggregateType: "stock",
		AggregateID:   "product-123",
		EventType:     "stock.reserved",
		Payload:       []byte(`{"quantity":4}`),
	}); err != nil {
		t.Fatalf("publish stock event failed: %v", err)
	}

	if err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-5",
		AggregateType: "order",
		AggregateID:   "order-123",
		EventType:     "order.created",
		Payload:       []byte(`{"items_count":1}`),
	}); err != nil {
		t.Fatalf("publish order event failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

// Фиксированный topic не перехватывает stock-события: DLQ-паблишер
// отправляет всё в свой topic независимо от aggregate_type.
func TestOutboxPublisher_FixedTopicIgnoresAggregateType(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderEventsDLQ {
			t.Errorf("expected topic %s, got %s", TopicOrderEventsDLQ, msg.Topic)
		}
		return nil
	})

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-outbox-publisher-test"),
	}
	publisher := NewOutboxPublisher(producer, TopicOrderEventsDLQ)

	if err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-6",
		AggregateType: "stock",
		AggregateID:   "product-123",
		EventType:     "stock.reserved",
		Payload:       []byte(`{"quantity":4}`),
	}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_DefaultTopic(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, "")
	topicPublisher, ok := publisher.(*OutboxTopicPublisher)
	if !ok {
		t.Fatalf("unexpected publisher type %T", publisher)
	}
	if topicPublisher.topic != TopicOrderEvents {
		t.Errorf("expected default topic %s, got %s", TopicOrderEvents, topicPublisher.topic)
	}
}
