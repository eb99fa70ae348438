package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// Kind clasifica un error para que los llamadores distingan el tipo sin comparar strings.
type Kind int

const (
	// KindOperational cualquier falla no clasificada (conexión, escritura, etc.).
	KindOperational Kind = iota
	KindValidation
	KindNotFound
	KindInsufficientStock
)

// String devuelve el código estable del tipo de error.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	default:
		return "INTERNAL"
	}
}

// KindOf clasifica err recorriendo la cadena de wrapping. nil se considera operacional.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOperational
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	default:
		return KindOperational
	}
}
