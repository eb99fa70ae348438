package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo log de auditoría de movimientos sobre PostgreSQL. Solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el repositorio. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento. created_at lo fija la base con clock_timestamp() y se
// devuelve en m.CreatedAt; dentro de la tx del ledger la fila del producto ya está bloqueada.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, type, quantity, balance_after, actor_id, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, m.Type, m.Quantity, m.BalanceAfter, m.ActorID, m.Reference,
	).Scan(&m.CreatedAt)
	if err != nil {
		return mapMovementInsertErr(err)
	}
	return nil
}

// ListByProduct devuelve los movimientos del producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id::text, product_id::text, type, quantity, balance_after, actor_id, reference, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3`
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.q.Query(ctx, query, productID, lim, offset)
	if err != nil {
		if isMalformedID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.BalanceAfter, &m.ActorID, &m.Reference, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		if isMalformedID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return out, nil
}
