package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del log de auditoría de movimientos (append-only).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve los movimientos del producto, más recientes primero.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
