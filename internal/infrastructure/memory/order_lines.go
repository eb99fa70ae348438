package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

var _ inventory.OrderLineResolver = (*OrderLines)(nil)

// OrderLines resolver de items de pedido en memoria.
type OrderLines struct {
	mu    sync.RWMutex
	lines map[string]entity.OrderLine
}

// NewOrderLines construye un resolver vacío.
func NewOrderLines() *OrderLines {
	return &OrderLines{lines: make(map[string]entity.OrderLine)}
}

// Create registra un item de pedido; domain.ErrDuplicate si el ID ya existe.
func (o *OrderLines) Create(_ context.Context, line *entity.OrderLine) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.lines[line.ID]; ok {
		return domain.ErrDuplicate
	}
	o.lines[line.ID] = *line
	return nil
}

// Put registra (o reemplaza) un item de pedido.
func (o *OrderLines) Put(id, productID string, quantity decimal.Decimal) {
	o.mu.Lock()
	o.lines[id] = entity.OrderLine{ID: id, ProductID: productID, Quantity: quantity}
	o.mu.Unlock()
}

// Resolve devuelve el item o domain.ErrNotFound.
func (o *OrderLines) Resolve(_ context.Context, orderLineID string) (*entity.OrderLine, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	line, ok := o.lines[orderLineID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &line, nil
}
