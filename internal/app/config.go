package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adosoftyazilim/blrb2b/internal/messaging/kafka"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr string
	OpsAddr  string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers string
	// KafkaRequiredAcks — гарантия доставки producer: all, local или none.
	KafkaRequiredAcks string
	KafkaRetryMax     int

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	// OutboxRetention — сколько хранятся отправленные outbox-записи
	// до удаления retention-воркером.
	OutboxRetention time.Duration
}

// DefaultConfig возвращает базовые настройки: in-memory storage, API на :8080,
// ops-эндпоинты (metrics/health) на :9090.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		OpsAddr:             ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		KafkaRequiredAcks:   "all",
		KafkaRetryMax:       5,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
		OutboxRetention:     24 * time.Hour,
	}
}

// LoadConfigFromEnv читает настройки из окружения поверх дефолтов.
// Если задан B2B_POSTGRES_DSN, драйвер автоматически переключается на postgres.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("B2B_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("B2B_OPS_ADDR")); v != "" {
		cfg.OpsAddr = v
	}

	if v := strings.TrimSpace(os.Getenv("B2B_POSTGRES_DSN")); v != "" {
		cfg.PostgresDSN = v
		cfg.StorageDriver = StorageDriverPostgres
	}
	if v := strings.TrimSpace(os.Getenv("B2B_STORAGE_DRIVER")); v != "" {
		driver := StorageDriver(strings.ToLower(v))
		switch driver {
		case StorageDriverMemory, StorageDriverPostgres:
			cfg.StorageDriver = driver
		default:
			return Config{}, fmt.Errorf("unsupported storage driver: %s", v)
		}
	}
	if v := strings.TrimSpace(os.Getenv("B2B_POSTGRES_AUTO_MIGRATE")); v != "" {
		autoMigrate, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse B2B_POSTGRES_AUTO_MIGRATE: %w", err)
		}
		cfg.PostgresAutoMigrate = autoMigrate
	}

	cfg.KafkaBrokers = strings.TrimSpace(os.Getenv("B2B_KAFKA_BROKERS"))

	if v := strings.TrimSpace(os.Getenv("B2B_KAFKA_REQUIRED_ACKS")); v != "" {
		if _, err := kafka.ParseRequiredAcks(v); err != nil {
			return Config{}, fmt.Errorf("parse B2B_KAFKA_REQUIRED_ACKS: %w", err)
		}
		cfg.KafkaRequiredAcks = v
	}
	if v := strings.TrimSpace(os.Getenv("B2B_KAFKA_RETRY_MAX")); v != "" {
		retryMax, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse B2B_KAFKA_RETRY_MAX: %w", err)
		}
		cfg.KafkaRetryMax = retryMax
	}

	if v := strings.TrimSpace(os.Getenv("B2B_OUTBOX_POLL_INTERVAL")); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse B2B_OUTBOX_POLL_INTERVAL: %w", err)
		}
		cfg.OutboxPollInterval = interval
	}
	if v := strings.TrimSpace(os.Getenv("B2B_OUTBOX_BATCH_SIZE")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse B2B_OUTBOX_BATCH_SIZE: %w", err)
		}
		cfg.OutboxBatchSize = size
	}
	if v := strings.TrimSpace(os.Getenv("B2B_OUTBOX_MAX_ATTEMPTS")); v != "" {
		attempts, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse B2B_OUTBOX_MAX_ATTEMPTS: %w", err)
		}
		cfg.OutboxMaxAttempts = attempts
	}
	if v := strings.TrimSpace(os.Getenv("B2B_OUTBOX_RETENTION")); v != "" {
		retention, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse B2B_OUTBOX_RETENTION: %w", err)
		}
		cfg.OutboxRetention = retention
	}

	return cfg, nil
}
