package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// StockLedger registra entradas y salidas de stock. No guarda estado propio: traduce cada
// movimiento a un delta con signo y delega en ProductRepository.ApplyDelta, que hace la
// verificación de no-negatividad y la escritura en un solo paso.
type StockLedger struct {
	txRunner  TxRunner
	resolver  OrderLineResolver
	observers []MovementObserver
	log       *logger.Logger
	now       func() time.Time
}

// NewStockLedger construye el ledger.
func NewStockLedger(txRunner TxRunner, resolver OrderLineResolver, log *logger.Logger, observers ...MovementObserver) *StockLedger {
	return &StockLedger{
		txRunner:  txRunner,
		resolver:  resolver,
		observers: observers,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RegisterIncoming suma quantity al stock del producto y devuelve el saldo nuevo.
// quantity debe ser > 0 (domain.ErrInvalidInput); el producto debe existir (domain.ErrNotFound).
func (l *StockLedger) RegisterIncoming(ctx context.Context, productID string, quantity decimal.Decimal, actorID string) (decimal.Decimal, error) {
	if strings.TrimSpace(productID) == "" {
		return decimal.Zero, l.reject(ctx, entity.MovementTypeIN, fmt.Errorf("product_id requerido: %w", domain.ErrInvalidInput))
	}
	if !quantity.IsPositive() {
		return decimal.Zero, l.reject(ctx, entity.MovementTypeIN, fmt.Errorf("quantity debe ser mayor que cero: %w", domain.ErrInvalidInput))
	}
	if strings.TrimSpace(actorID) == "" {
		return decimal.Zero, l.reject(ctx, entity.MovementTypeIN, fmt.Errorf("actor requerido: %w", domain.ErrInvalidInput))
	}
	return l.apply(ctx, entity.StockMovement{
		ProductID: productID,
		Type:      entity.MovementTypeIN,
		Quantity:  quantity,
		ActorID:   actorID,
	})
}

// RegisterOutgoing resuelve el item de pedido a (producto, cantidad) y descuenta la cantidad.
// Si el stock no alcanza devuelve domain.ErrInsufficientStock y no se descuenta nada.
func (l *StockLedger) RegisterOutgoing(ctx context.Context, orderLineID, actorID string) (decimal.Decimal, error) {
	if strings.TrimSpace(orderLineID) == "" {
		return decimal.Zero, l.reject(ctx, entity.MovementTypeOUT, fmt.Errorf("order_item_id requerido: %w", domain.ErrInvalidInput))
	}
	if strings.TrimSpace(actorID) == "" {
		return decimal.Zero, l.reject(ctx, entity.MovementTypeOUT, fmt.Errorf("actor requerido: %w", domain.ErrInvalidInput))
	}
	line, err := l.resolver.Resolve(ctx, orderLineID)
	if err != nil {
		return decimal.Zero, l.reject(ctx, entity.MovementTypeOUT, fmt.Errorf("resolver item de pedido %s: %w", orderLineID, err))
	}
	if line == nil {
		return decimal.Zero, l.reject(ctx, entity.MovementTypeOUT, fmt.Errorf("item de pedido %s: %w", orderLineID, domain.ErrNotFound))
	}
	if !line.Quantity.IsPositive() {
		return decimal.Zero, l.reject(ctx, entity.MovementTypeOUT, fmt.Errorf("item de pedido %s con cantidad no positiva: %w", orderLineID, domain.ErrInvalidInput))
	}
	return l.apply(ctx, entity.StockMovement{
		ProductID: line.ProductID,
		Type:      entity.MovementTypeOUT,
		Quantity:  line.Quantity,
		ActorID:   actorID,
		Reference: orderLineID,
	})
}

// apply inicia la transacción, aplica el delta, guarda el movimiento y hace Commit o Rollback.
// CreatedAt se fija después de ApplyDelta, con el producto bloqueado por la transacción:
// el orden del historial es el orden de los saldos.
func (l *StockLedger) apply(ctx context.Context, mov entity.StockMovement) (decimal.Decimal, error) {
	mov.ID = uuid.New().String()

	err := l.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		balance, err := productRepo.ApplyDelta(ctx, mov.ProductID, mov.Delta())
		if err != nil {
			return err
		}
		mov.BalanceAfter = balance
		mov.CreatedAt = l.now()
		return movRepo.Create(ctx, &mov)
	})
	if err != nil {
		return decimal.Zero, l.reject(ctx, mov.Type, fmt.Errorf("producto %s: %w", mov.ProductID, err))
	}

	l.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("type", mov.Type).
		Str("quantity", mov.Quantity.String()).
		Str("balance", mov.BalanceAfter.String()).
		Str("actor_id", mov.ActorID).
		Str("reference", mov.Reference).
		Msg("movimiento de stock registrado")
	for _, o := range l.observers {
		o.MovementCommitted(ctx, mov)
	}
	return mov.BalanceAfter, nil
}

func (l *StockLedger) reject(ctx context.Context, movementType string, err error) error {
	kind := domain.KindOf(err)
	ev := l.log.Warn()
	if kind == domain.KindOperational {
		ev = l.log.Error()
	}
	ev.Err(err).Str("type", movementType).Str("kind", kind.String()).Msg("movimiento de stock rechazado")
	for _, o := range l.observers {
		o.MovementRejected(ctx, movementType, err)
	}
	return err
}
