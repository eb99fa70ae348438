package repository

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Es el único dueño del saldo: nadie fuera de ApplyDelta escribe stock después de Create.
type ProductRepository interface {
	// Create persiste un producto nuevo (ya validado por entity.NewProduct).
	Create(ctx context.Context, product *entity.Product) error

	// GetByID devuelve el producto o domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*entity.Product, error)

	// List devuelve una secuencia perezosa de todos los productos. Cada iteración vuelve
	// a consultar el estado actual; no es un snapshot congelado.
	List(ctx context.Context) iter.Seq2[*entity.Product, error]

	// ApplyDelta suma delta (con signo) al stock y devuelve el saldo nuevo, en un solo paso
	// indivisible respecto a otros llamadores sobre el mismo producto.
	// Si el resultado fuera negativo devuelve domain.ErrInsufficientStock sin modificar nada;
	// si el producto no existe, domain.ErrNotFound.
	ApplyDelta(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)
}
