package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/estoque-api/internal/domain"
)

// Product representa un producto del catálogo con su saldo de stock.
// Stock solo se escribe al crear el producto; después cambia únicamente vía movimientos (StockLedger).
type Product struct {
	ID        string
	Name      string
	Format    string          // unidad de empaque (ej. "caja x12"), opcional
	Price     decimal.Decimal // precio de venta, >= 0
	Stock     decimal.Decimal // saldo actual, siempre >= 0
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProduct valida los datos y construye un producto con ID nuevo.
// El nombre se recorta y se normaliza a NFC para que "Açúcar" escrito de dos formas sea el mismo texto.
func NewProduct(name, format string, price, stock decimal.Decimal) (*Product, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("name requerido: %w", domain.ErrInvalidInput)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price negativo: %w", domain.ErrInvalidInput)
	}
	if stock.IsNegative() {
		return nil, fmt.Errorf("stock negativo: %w", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	return &Product{
		ID:        uuid.New().String(),
		Name:      name,
		Format:    norm.NFC.String(strings.TrimSpace(format)),
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
