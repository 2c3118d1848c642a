package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
	"github.com/adosoftyazilim/blrb2b/internal/storage/memory"
	"github.com/adosoftyazilim/blrb2b/internal/storage/postgres"
)

// runtimeDependencies объединяет репозитории, собранные под выбранный драйвер.
type runtimeDependencies struct {
	orders    domain.OrderRepository
	products  domain.ProductRepository
	customers domain.CustomerRepository
	movements domain.StockMovementRepository
	outbox    domain.OutboxRepository

	// store не nil только для postgres; используется для health check и Close.
	store *postgres.Store
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	if d.store == nil {
		return
	}
	if err := d.store.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}

// initRuntimeDependencies собирает хранилище по cfg.StorageDriver.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return &runtimeDependencies{
			orders:    memory.NewOrderRepository(),
			products:  memory.NewProductRepository(),
			customers: memory.NewCustomerRepository(),
			movements: memory.NewStockMovementRepository(),
			outbox:    memory.NewOutboxRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires B2B_POSTGRES_DSN")
		}

		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}

		return &runtimeDependencies{
			orders:    postgres.NewOrderRepository(store),
			products:  postgres.NewProductRepository(store),
			customers: postgres.NewCustomerRepository(store),
			movements: postgres.NewStockMovementRepository(store),
			outbox:    postgres.NewOutboxRepository(store),
			store:     store,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}
