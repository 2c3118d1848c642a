package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
)

type stockMovementRepository struct {
	db *sql.DB
}

// NewStockMovementRepository создаёт PostgreSQL-реализацию StockMovementRepository.
func NewStockMovementRepository(store *Store) domain.StockMovementRepository {
	return &stockMovementRepository{db: store.DB()}
}

func (r *stockMovementRepository) Append(movement domain.StockMovement) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var orderID sql.NullString
	if movement.OrderID != "" {
		orderID = sql.NullString{String: movement.OrderID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_movements (
			id, product_id, order_id, quantity, movement_type, movement_date, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		movement.ID, movement.ProductID, orderID, movement.Quantity,
		string(movement.MovementType), movement.MovementDate, movement.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}

	return nil
}

func (r *stockMovementRepository) ListByProduct(productID string) ([]domain.StockMovement, error) {
	return r.list(`WHERE product_id = $1`, productID)
}

func (r *stockMovementRepository) ListByOrder(orderID string) ([]domain.StockMovement, error) {
	return r.list(`WHERE order_id = $1`, orderID)
}

func (r *stockMovementRepository) list(where, arg string) ([]domain.StockMovement, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, order_id, quantity, movement_type, movement_date, notes
		FROM stock_movements
	`+where+`
		ORDER BY movement_date ASC, id ASC
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	movements := make([]domain.StockMovement, 0)
	for rows.Next() {
		var (
			m       domain.StockMovement
			orderID sql.NullString
			mType   string
		)
		if err := rows.Scan(
			&m.ID, &m.ProductID, &orderID, &m.Quantity, &mType, &m.MovementDate, &m.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.OrderID = orderID.String
		m.MovementType = domain.MovementType(mType)
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock movements: %w", err)
	}

	return movements, nil
}

var _ domain.StockMovementRepository = (*stockMovementRepository)(nil)
