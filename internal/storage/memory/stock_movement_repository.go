package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

// stockMovementRepositoryInMemory — append-only журнал движений остатков.
type stockMovementRepositoryInMemory struct {
	mu      sync.RWMutex
	records []domain.StockMovement
}

// NewStockMovementRepository возвращает in-memory журнал движений.
func NewStockMovementRepository() domain.StockMovementRepository {
	return &stockMovementRepositoryInMemory{}
}

// Append дописывает движение в журнал.
func (r *stockMovementRepositoryInMemory) Append(movement domain.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if movement.ID == "" {
		movement.ID = uuid.NewString()
	}
	r.records = append(r.records, movement)
	return nil
}

// ListByProduct возвращает движения товара в хронологическом порядке.
func (r *stockMovementRepositoryInMemory) ListByProduct(productID string) ([]domain.StockMovement, error) {
	return r.list(func(m domain.StockMovement) bool {
		return m.ProductID == productID
	}), nil
}

// ListByOrder возвращает движения, порождённые заказом.
func (r *stockMovementRepositoryInMemory) ListByOrder(orderID string) ([]domain.StockMovement, error) {
	return r.list(func(m domain.StockMovement) bool {
		return m.OrderID == orderID
	}), nil
}

func (r *stockMovementRepositoryInMemory) list(match func(domain.StockMovement) bool) []domain.StockMovement {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.StockMovement, 0, len(r.records))
	for _, movement := range r.records {
		if match(movement) {
			result = append(result, movement)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].MovementDate.Before(result[j].MovementDate)
	})

	return result
}

var _ domain.StockMovementRepository = (*stockMovementRepositoryInMemory)(nil)
