package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

func TestStockMovementRepository_AppendAndList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	products := NewProductRepository(store)
	repo := NewStockMovementRepository(store)

	product := seedProductForIntegrationTest(t, products, "SKU-PG-MOV", 30)
	orderID := uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)

	out := domain.StockMovement{
		ID:           uuid.NewString(),
		ProductID:    product.ID,
		OrderID:      orderID,
		Quantity:     4,
		MovementType: domain.MovementTypeOut,
		MovementDate: base,
		Notes:        "order reservation",
	}
	if err := repo.Append(out); err != nil {
		t.Fatalf("Append out: %v", err)
	}

	in := domain.StockMovement{
		ID:           uuid.NewString(),
		ProductID:    product.ID,
		OrderID:      orderID,
		Quantity:     4,
		MovementType: domain.MovementTypeIn,
		MovementDate: base.Add(time.Second),
		Notes:        "order deleted",
	}
	if err := repo.Append(in); err != nil {
		t.Fatalf("Append in: %v", err)
	}

	byProduct, err := repo.ListByProduct(product.ID)
	if err != nil {
		t.Fatalf("ListByProduct: %v", err)
	}
	if len(byProduct) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(byProduct))
	}
	if byProduct[0].MovementType != domain.MovementTypeOut ||
		byProduct[1].MovementType != domain.MovementTypeIn {
		t.Fatalf("expected out then in, got %s then %s",
			byProduct[0].MovementType, byProduct[1].MovementType)
	}
	if byProduct[0].OrderID != orderID || byProduct[0].Notes != "order reservation" {
		t.Fatalf("unexpected movement: %+v", byProduct[0])
	}

	byOrder, err := repo.ListByOrder(orderID)
	if err != nil {
		t.Fatalf("ListByOrder: %v", err)
	}
	if len(byOrder) != 2 {
		t.Fatalf("expected 2 movements for order, got %d", len(byOrder))
	}
}

// order_id журнала опционален: ручные корректировки склада не привязаны
// к заказу и не попадают в выборку по заказам.
func TestStockMovementRepository_AppendWithoutOrder(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	products := NewProductRepository(store)
	repo := NewStockMovementRepository(store)

	product := seedProductForIntegrationTest(t, products, "SKU-PG-ADJ", 10)

	if err := repo.Append(domain.StockMovement{
		ID:           uuid.NewString(),
		ProductID:    product.ID,
		Quantity:     2,
		MovementType: domain.MovementTypeIn,
		MovementDate: time.Now().UTC().Truncate(time.Millisecond),
		Notes:        "manual adjustment",
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	byProduct, err := repo.ListByProduct(product.ID)
	if err != nil {
		t.Fatalf("ListByProduct: %v", err)
	}
	if len(byProduct) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(byProduct))
	}
	if byProduct[0].OrderID != "" {
		t.Fatalf("expected empty order id, got %q", byProduct[0].OrderID)
	}
}
