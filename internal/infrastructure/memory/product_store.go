package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductStore)(nil)

// productRecord guarda un producto con su propio lock: ApplyDelta sobre productos
// distintos no se bloquea entre sí.
type productRecord struct {
	mu      sync.Mutex
	product entity.Product
}

// ProductStore implementación en memoria de ProductRepository.
type ProductStore struct {
	mu    sync.RWMutex
	byID  map[string]*productRecord
	order []string // orden de creación, para List
}

// NewProductStore construye un store vacío.
func NewProductStore() *ProductStore {
	return &ProductStore{byID: make(map[string]*productRecord)}
}

// Create persiste un nuevo producto. domain.ErrDuplicate si el ID ya existe.
func (s *ProductStore) Create(_ context.Context, product *entity.Product) error {
	if product.Stock.IsNegative() {
		return fmt.Errorf("stock negativo: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[product.ID]; ok {
		return domain.ErrDuplicate
	}
	s.byID[product.ID] = &productRecord{product: *product}
	s.order = append(s.order, product.ID)
	return nil
}

// GetByID devuelve una copia del producto.
func (s *ProductStore) GetByID(_ context.Context, id string) (*entity.Product, error) {
	rec, ok := s.record(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec.mu.Lock()
	p := rec.product
	rec.mu.Unlock()
	return &p, nil
}

// List recorre los productos en orden de creación leyendo el valor vigente de cada uno.
func (s *ProductStore) List(ctx context.Context) iter.Seq2[*entity.Product, error] {
	return s.list(ctx, s.GetByID)
}

func (s *ProductStore) list(ctx context.Context, get func(context.Context, string) (*entity.Product, error)) iter.Seq2[*entity.Product, error] {
	return func(yield func(*entity.Product, error) bool) {
		s.mu.RLock()
		ids := slices.Clone(s.order)
		s.mu.RUnlock()
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			p, err := get(ctx, id)
			if err != nil {
				continue
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// ApplyDelta lee, calcula y escribe el saldo bajo el lock del producto.
func (s *ProductStore) ApplyDelta(_ context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	rec, ok := s.record(id)
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.apply(delta)
}

// apply requiere rec.mu tomado.
func (rec *productRecord) apply(delta decimal.Decimal) (decimal.Decimal, error) {
	next := rec.product.Stock.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	rec.product.Stock = next
	rec.product.UpdatedAt = time.Now().UTC()
	return next, nil
}

func (s *ProductStore) record(id string) (*productRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	return rec, ok
}
