package inventory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/application/dto"
)

// RegisterIncomingFromRequest adapta el request HTTP al caso de uso RegisterIncoming.
func (l *StockLedger) RegisterIncomingFromRequest(ctx context.Context, userID string, in dto.IncomingRequest) (*dto.BalanceResponse, error) {
	balance, err := l.RegisterIncoming(ctx, in.ProductID, in.Quantity, userID)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{ProductID: in.ProductID, Stock: balance}, nil
}

// ConfirmOrderItemFromRequest adapta el request de confirmación de pedido a RegisterOutgoing.
func (l *StockLedger) ConfirmOrderItemFromRequest(ctx context.Context, userID string, in dto.ConfirmOrderItemRequest) (*dto.BalanceResponse, error) {
	balance, err := l.RegisterOutgoing(ctx, in.OrderItemID, userID)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{OrderItemID: in.OrderItemID, Stock: balance}, nil
}
