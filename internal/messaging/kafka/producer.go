package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// Producer представляет Kafka producer для публикации событий
type Producer struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// ProducerOptions настраивают гарантии доставки producer.
type ProducerOptions struct {
	RequiredAcks sarama.RequiredAcks
	RetryMax     int
}

// DefaultProducerOptions — максимум надёжности: acks=all и 5 retry.
func DefaultProducerOptions() ProducerOptions {
	return ProducerOptions{
		RequiredAcks: sarama.WaitForAll,
		RetryMax:     5,
	}
}

// ParseRequiredAcks переводит строковое значение конфигурации в sarama acks.
// Пустая строка означает `all`.
func ParseRequiredAcks(value string) (sarama.RequiredAcks, error) {
	switch value {
	case "", "all":
		return sarama.WaitForAll, nil
	case "local":
		return sarama.WaitForLocal, nil
	case "none":
		return sarama.NoResponse, nil
	default:
		return 0, fmt.Errorf("unsupported kafka acks value: %q", value)
	}
}

// NewProducer создает новый Kafka producer с настройками по умолчанию
func NewProducer(brokers []string) (*Producer, error) {
	return NewProducerWithOptions(brokers, DefaultProducerOptions())
}

// NewProducerWithOptions создает Kafka producer с заданными гарантиями доставки
func NewProducerWithOptions(brokers []string, opts ProducerOptions) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(brokers, buildProducerConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		logger:   log.WithField("component", "kafka-producer"),
	}, nil
}

func buildProducerConfig(opts ProducerOptions) *sarama.Config {
	if opts.RetryMax <= 0 {
		opts.RetryMax = DefaultProducerOptions().RetryMax
	}

	config := sarama.NewConfig()
	config.Producer.RequiredAcks = opts.RequiredAcks
	config.Producer.Retry.Max = opts.RetryMax
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	// Идемпотентность требует acks=all и один in-flight запрос.
	if opts.RequiredAcks == sarama.WaitForAll {
		config.Producer.Idempotent = true
		config.Net.MaxOpenRequests = 1
	}

	return config
}

// PublishEvent публикует событие в Kafka
func (p *Producer) PublishEvent(topic string, key string, event interface{}) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(eventData),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic": topic,
			"key":   key,
		}).Error("failed to send message to kafka")
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"topic":     topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	}).Debug("message sent to kafka")

	return nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
