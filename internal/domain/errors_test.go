package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/estoque-api/internal/domain"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.Kind
	}{
		{"validación", domain.ErrInvalidInput, domain.KindValidation},
		{"validación envuelta", fmt.Errorf("quantity: %w", domain.ErrInvalidInput), domain.KindValidation},
		{"no encontrado", fmt.Errorf("product abc: %w", domain.ErrNotFound), domain.KindNotFound},
		{"stock insuficiente", fmt.Errorf("apply delta: %w", domain.ErrInsufficientStock), domain.KindInsufficientStock},
		{"falla de conexión", errors.New("conn reset by peer"), domain.KindOperational},
		{"nil", nil, domain.KindOperational},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.KindOf(tc.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "VALIDATION", domain.KindValidation.String())
	assert.Equal(t, "NOT_FOUND", domain.KindNotFound.String())
	assert.Equal(t, "INSUFFICIENT_STOCK", domain.KindInsufficientStock.String())
	assert.Equal(t, "INTERNAL", domain.KindOperational.String())
}
