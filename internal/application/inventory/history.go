package inventory

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// MovementHistoryUseCase consulta el log de auditoría de movimientos (solo lectura).
type MovementHistoryUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
}

// NewMovementHistoryUseCase construye el caso de uso.
func NewMovementHistoryUseCase(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) *MovementHistoryUseCase {
	return &MovementHistoryUseCase{productRepo: productRepo, movRepo: movRepo}
}

// ListByProduct devuelve los movimientos del producto, más recientes primero.
// domain.ErrNotFound si el producto no existe.
func (uc *MovementHistoryUseCase) ListByProduct(ctx context.Context, productID string, limit, offset int) (*dto.MovementListResponse, error) {
	if _, err := uc.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	list, err := uc.movRepo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Type:         m.Type,
		Quantity:     m.Quantity,
		BalanceAfter: m.BalanceAfter,
		ActorID:      m.ActorID,
		Reference:    m.Reference,
		CreatedAt:    m.CreatedAt,
	}
}
