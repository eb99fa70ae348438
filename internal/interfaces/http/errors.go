package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
)

// LocalError guarda el error operacional de la petición para que RequestLogger lo registre.
const LocalError = "request_error"

// writeError traduce un error de la capa de aplicación a status + ErrorResponse.
// Los errores operacionales no exponen el detalle al cliente.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el recurso ya existe"})
	}

	kind := domain.KindOf(err)
	switch kind {
	case domain.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: kind.String(), Message: err.Error()})
	case domain.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: kind.String(), Message: err.Error()})
	case domain.KindInsufficientStock:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: kind.String(), Message: err.Error()})
	}
	c.Locals(LocalError, err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: kind.String(), Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
