package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementLog)(nil)

// MovementLog log de movimientos append-only en memoria.
type MovementLog struct {
	mu        sync.RWMutex
	movements []entity.StockMovement
}

// NewMovementLog construye un log vacío.
func NewMovementLog() *MovementLog {
	return &MovementLog{}
}

// Create agrega el movimiento al final del log.
func (l *MovementLog) Create(_ context.Context, movement *entity.StockMovement) error {
	l.mu.Lock()
	l.movements = append(l.movements, *movement)
	l.mu.Unlock()
	return nil
}

// ListByProduct devuelve los movimientos del producto, más recientes primero.
func (l *MovementLog) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*entity.StockMovement
	skipped := 0
	for i := len(l.movements) - 1; i >= 0; i-- {
		m := l.movements[i]
		if m.ProductID != productID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, &m)
	}
	return out, nil
}
