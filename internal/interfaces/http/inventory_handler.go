package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
)

// InventoryHandler maneja entradas, confirmación de pedidos e historial de movimientos (protegido).
type InventoryHandler struct {
	ledger  *inventory.StockLedger
	history *inventory.MovementHistoryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedger, history *inventory.MovementHistoryUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, history: history}
}

// RegisterIncoming godoc
// @Summary      Registrar entrada de stock
// @Description  Suma quantity al saldo del producto. El actor es el usuario del token.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IncomingRequest  true  "product_id, quantity (> 0)"
// @Success      200   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/incoming [post]
func (h *InventoryHandler) RegisterIncoming(c *fiber.Ctx) error {
	var in dto.IncomingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.RegisterIncomingFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ConfirmOrderItem godoc
// @Summary      Confirmar item de pedido
// @Description  Descuenta la cantidad del item del saldo del producto. Sin stock suficiente no cambia nada.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConfirmOrderItemRequest  true  "order_item_id"
// @Success      200   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/confirm [post]
func (h *InventoryHandler) ConfirmOrderItem(c *fiber.Ctx) error {
	var in dto.ConfirmOrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.ConfirmOrderItemFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "Product ID"
// @Param        limit   query  int     false  "Máx. 100, por defecto 20"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200     {object}  dto.MovementListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit/offset inválidos"})
	}
	page.DefaultPage()
	out, err := h.history.ListByProduct(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
