package repository

import (
	"context"

	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	// Create devuelve domain.ErrEmailAlreadyExists si el email ya está registrado.
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail devuelve (nil, nil) si no existe.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
