package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар, проверяя уникальность SKU.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.SKU, product.SKU) {
			return domain.ErrProductSKUTaken
		}
	}
	r.items[product.ID] = product
	return nil
}

// GetByID возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) GetByID(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// GetBySKU возвращает товар по артикулу или ErrProductNotFound.
func (r *productRepositoryInMemory) GetBySKU(sku string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.items {
		if strings.EqualFold(product.SKU, sku) {
			return product, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

// Update перезаписывает товар целиком.
func (r *productRepositoryInMemory) Update(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	product.UpdatedAt = time.Now().UTC()
	r.items[product.ID] = product
	return nil
}

// List возвращает товары, ограничивая выборку limit (если >0).
func (r *productRepositoryInMemory) List(limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SKU < result[j].SKU
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// ReserveStock уменьшает остаток под write-lock, только если его хватает.
// Проверка и декремент атомарны, поэтому два конкурентных заказа не могут
// распродать один остаток дважды.
func (r *productRepositoryInMemory) ReserveStock(id string, qty int32) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if product.StockQuantity < qty {
		return domain.Product{}, domain.ErrInsufficientStock
	}
	product.StockQuantity -= qty
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return product, nil
}

// ReleaseStock возвращает qty к текущему остатку (всегда аддитивно,
// не reset к прежнему значению).
func (r *productRepositoryInMemory) ReleaseStock(id string, qty int32) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	product.StockQuantity += qty
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return product, nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
