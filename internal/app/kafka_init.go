package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/adosoftyazilim/blrb2b/internal/messaging/kafka"
)

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой.
func initKafkaProducer(cfg Config, logger *log.Entry) (*kafka.Producer, error) {
	if cfg.KafkaBrokers == "" {
		return nil, nil
	}

	opts := kafka.DefaultProducerOptions()
	acks, err := kafka.ParseRequiredAcks(cfg.KafkaRequiredAcks)
	if err != nil {
		logger.WithError(err).Warn("invalid kafka acks, falling back to all")
	} else {
		opts.RequiredAcks = acks
	}
	if cfg.KafkaRetryMax > 0 {
		opts.RetryMax = cfg.KafkaRetryMax
	}

	brokerList := strings.Split(cfg.KafkaBrokers, ",")
	producer, err := kafka.NewProducerWithOptions(brokerList, opts)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithFields(log.Fields{
		"brokers":   brokerList,
		"acks":      cfg.KafkaRequiredAcks,
		"retry_max": opts.RetryMax,
	}).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
