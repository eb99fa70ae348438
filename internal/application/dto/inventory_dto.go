package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomingRequest body para POST /api/inventory/incoming.
type IncomingRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ConfirmOrderItemRequest body para POST /api/orders/confirm.
type ConfirmOrderItemRequest struct {
	OrderItemID string `json:"order_item_id"`
}

// BalanceResponse saldo resultante de un movimiento.
type BalanceResponse struct {
	ProductID   string          `json:"product_id,omitempty"`
	OrderItemID string          `json:"order_item_id,omitempty"`
	Stock       decimal.Decimal `json:"stock"`
}

// MovementResponse salida de un movimiento del log de auditoría.
type MovementResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	ActorID      string          `json:"actor_id"`
	Reference    string          `json:"reference,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
