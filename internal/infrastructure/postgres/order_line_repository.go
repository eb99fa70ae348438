package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

var _ inventory.OrderLineResolver = (*OrderLineRepo)(nil)

// OrderLineRepo resuelve items de pedido desde la tabla order_items.
type OrderLineRepo struct {
	q Querier
}

// NewOrderLineRepository construye el resolver.
func NewOrderLineRepository(q Querier) *OrderLineRepo {
	return &OrderLineRepo{q: q}
}

// Create registra un item de pedido. Lo usan la capa de pedidos y la importación de cmd/seed.
func (r *OrderLineRepo) Create(ctx context.Context, line *entity.OrderLine) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO order_items (id, product_id, quantity) VALUES ($1, $2, $3)`,
		line.ID, line.ProductID, line.Quantity,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err), isMalformedID(err):
			return fmt.Errorf("insert order item: %w", domain.ErrNotFound)
		case isNumericOutOfRange(err):
			return fmt.Errorf("insert order item: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// Resolve devuelve (producto, cantidad) del item o domain.ErrNotFound.
func (r *OrderLineRepo) Resolve(ctx context.Context, orderLineID string) (*entity.OrderLine, error) {
	var line entity.OrderLine
	err := r.q.QueryRow(ctx,
		`SELECT id::text, product_id::text, quantity FROM order_items WHERE id = $1`, orderLineID,
	).Scan(&line.ID, &line.ProductID, &line.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve order item: %w", err)
	}
	return &line, nil
}
