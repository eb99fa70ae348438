package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const selectProduct = `
	SELECT id::text, name, format, price, stock, created_at, updated_at
	FROM products`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con su stock inicial.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, name, format, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Format, product.Price, product.Stock,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isCheckViolation(err), isNumericOutOfRange(err):
			return fmt.Errorf("insert product: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, selectProduct+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List recorre los productos por orden de creación. La consulta se lanza en cada iteración.
func (r *ProductRepo) List(ctx context.Context) iter.Seq2[*entity.Product, error] {
	return func(yield func(*entity.Product, error) bool) {
		rows, err := r.q.Query(ctx, selectProduct+` ORDER BY created_at, id`)
		if err != nil {
			yield(nil, fmt.Errorf("list products: %w", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				yield(nil, fmt.Errorf("scan product: %w", err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("list products: %w", err))
		}
	}
}

// ApplyDelta actualiza el saldo con un único UPDATE condicional: la fila queda bloqueada
// por la sentencia y la condición se evalúa sobre el valor ya bloqueado.
func (r *ProductRepo) ApplyDelta(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock`
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, query, id, delta).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	switch {
	case isMalformedID(err):
		return decimal.Zero, domain.ErrNotFound
	case isCheckViolation(err):
		return decimal.Zero, domain.ErrInsufficientStock
	case isNumericOutOfRange(err):
		return decimal.Zero, fmt.Errorf("apply delta: %w", domain.ErrInvalidInput)
	case !errors.Is(err, pgx.ErrNoRows):
		return decimal.Zero, fmt.Errorf("apply delta: %w", err)
	}

	// Ninguna fila afectada: o no existe o el saldo no alcanza.
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return decimal.Zero, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return decimal.Zero, domain.ErrNotFound
	}
	return decimal.Zero, domain.ErrInsufficientStock
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Format, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
