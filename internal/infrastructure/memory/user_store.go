package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserStore)(nil)

// UserStore usuarios en memoria indexados por email.
type UserStore struct {
	mu      sync.RWMutex
	byEmail map[string]entity.User
}

// NewUserStore construye un store vacío.
func NewUserStore() *UserStore {
	return &UserStore{byEmail: make(map[string]entity.User)}
}

// Create persiste el usuario; domain.ErrEmailAlreadyExists si el email ya existe.
func (s *UserStore) Create(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	s.byEmail[user.Email] = *user
	return nil
}

// FindByEmail devuelve (nil, nil) si no existe.
func (s *UserStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
