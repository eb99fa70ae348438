package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

func TestMovementHistory_ListByProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, 10)
	f.lines.Put("item-1", p.ID, dec(2))

	_, err := f.ledger.RegisterIncoming(ctx, p.ID, dec(5), testActor)
	require.NoError(t, err)
	_, err = f.ledger.RegisterOutgoing(ctx, "item-1", testActor)
	require.NoError(t, err)

	uc := inventory.NewMovementHistoryUseCase(f.products, f.movements)
	out, err := uc.ListByProduct(ctx, p.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, entity.MovementTypeOUT, out.Items[0].Type)
	assert.Equal(t, "13", out.Items[0].BalanceAfter.String())
	assert.Equal(t, entity.MovementTypeIN, out.Items[1].Type)
	assert.Equal(t, 20, out.Page.Limit)
}

func TestMovementHistory_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	uc := inventory.NewMovementHistoryUseCase(f.products, f.movements)

	_, err := uc.ListByProduct(context.Background(), "nope", 20, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
