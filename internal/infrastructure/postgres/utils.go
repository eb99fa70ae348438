package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/estoque-api/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation   = "23505"
	codeCheckViolation    = "23514"
	codeInvalidTextRepr   = "22P02" // ej. UUID mal formado
	codeForeignKeyViolate = "23503"
	codeNumericOutOfRange = "22003"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool { return pgCode(err) == codeUniqueViolation }

// isCheckViolation verifica si un error es una violación de CHECK (23514).
func isCheckViolation(err error) bool { return pgCode(err) == codeCheckViolation }

// isMalformedID un ID que ni siquiera es UUID válido no puede existir.
func isMalformedID(err error) bool { return pgCode(err) == codeInvalidTextRepr }

func isForeignKeyViolation(err error) bool { return pgCode(err) == codeForeignKeyViolate }

// isNumericOutOfRange un valor que no entra en NUMERIC (22003).
func isNumericOutOfRange(err error) bool { return pgCode(err) == codeNumericOutOfRange }

// mapMovementInsertErr traduce los errores del INSERT en stock_movements a errores de dominio.
func mapMovementInsertErr(err error) error {
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("insert stock movement: %w", domain.ErrNotFound)
	case isCheckViolation(err), isNumericOutOfRange(err):
		return fmt.Errorf("insert stock movement: %w", domain.ErrInvalidInput)
	}
	return fmt.Errorf("insert stock movement: %w", err)
}
