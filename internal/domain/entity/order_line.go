package entity

import "github.com/shopspring/decimal"

// OrderLine item de pedido resuelto a (producto, cantidad). Lo provee la capa de pedidos.
type OrderLine struct {
	ID        string
	ProductID string
	Quantity  decimal.Decimal
}
