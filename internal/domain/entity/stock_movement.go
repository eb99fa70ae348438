package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// StockMovement registro de auditoría de un movimiento aplicado (append-only).
// Quantity siempre es positiva; el signo lo determina Type.
type StockMovement struct {
	ID           string
	ProductID    string
	Type         string
	Quantity     decimal.Decimal
	BalanceAfter decimal.Decimal // saldo del producto inmediatamente después del movimiento
	ActorID      string          // usuario que registró el movimiento
	Reference    string          // item de pedido en salidas; vacío en entradas
	CreatedAt    time.Time
}

// Delta devuelve la cantidad con signo que el movimiento aplica al saldo.
func (m StockMovement) Delta() decimal.Decimal {
	if m.Type == MovementTypeOUT {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
