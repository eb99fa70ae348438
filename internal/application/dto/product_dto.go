package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Stock es el saldo inicial;
// después solo cambia vía movimientos.
type CreateProductRequest struct {
	Name   string          `json:"name"`
	Format string          `json:"format"`
	Price  decimal.Decimal `json:"price"`
	Stock  decimal.Decimal `json:"stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Format    string          `json:"format"`
	Price     decimal.Decimal `json:"price"`
	Stock     decimal.Decimal `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductListResponse lista de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}
