package memory

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta fn sobre el store y el log compartidos.
// Un ApplyDelta dentro de fn deja tomado el lock del producto hasta que fn termina, igual que el
// lock de fila de un UPDATE hasta el Commit: el movimiento se agrega al log antes de que otro
// llamador pueda mover el mismo producto. MovementLog.Create no falla, así que no hay nada que deshacer.
type TxRunner struct {
	products  *ProductStore
	movements *MovementLog
}

// NewTxRunner construye el runner en memoria.
func NewTxRunner(products *ProductStore, movements *MovementLog) *TxRunner {
	return &TxRunner{products: products, movements: movements}
}

// Run ejecuta fn con los repositorios en memoria.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &txProducts{store: r.products, held: make(map[string]*productRecord)}
	defer tx.release()
	return fn(tx, r.movements)
}

// txProducts vista de ProductStore atada a un Run.
type txProducts struct {
	store *ProductStore
	held  map[string]*productRecord
}

var _ repository.ProductRepository = (*txProducts)(nil)

func (t *txProducts) Create(ctx context.Context, product *entity.Product) error {
	return t.store.Create(ctx, product)
}

func (t *txProducts) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if rec, ok := t.held[id]; ok {
		p := rec.product
		return &p, nil
	}
	return t.store.GetByID(ctx, id)
}

func (t *txProducts) List(ctx context.Context) iter.Seq2[*entity.Product, error] {
	return t.store.list(ctx, t.GetByID)
}

// ApplyDelta toma el lock del producto (una sola vez por Run) y lo conserva hasta release.
func (t *txProducts) ApplyDelta(_ context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	rec, ok := t.held[id]
	if !ok {
		rec, ok = t.store.record(id)
		if !ok {
			return decimal.Zero, domain.ErrNotFound
		}
		rec.mu.Lock()
		t.held[id] = rec
	}
	return rec.apply(delta)
}

func (t *txProducts) release() {
	for id, rec := range t.held {
		rec.mu.Unlock()
		delete(t.held, id)
	}
}
