package inventory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback: ni el saldo ni el log de movimientos quedan modificados.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// OrderLineResolver resuelve un item de pedido a (producto, cantidad).
// Lo implementa la capa de pedidos; el ledger no valida su estructura más allá del par devuelto.
// Debe devolver domain.ErrNotFound si el item no existe.
type OrderLineResolver interface {
	Resolve(ctx context.Context, orderLineID string) (*entity.OrderLine, error)
}

// MovementObserver recibe notificaciones del ledger.
// MovementCommitted se invoca solo después del Commit; MovementRejected cuando el movimiento no se aplicó.
// Los observers no pueden alterar el resultado devuelto al llamador.
type MovementObserver interface {
	MovementCommitted(ctx context.Context, mov entity.StockMovement)
	MovementRejected(ctx context.Context, movementType string, err error)
}
