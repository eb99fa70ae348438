package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
)

func newProduct(t *testing.T, s *memory.ProductStore, name string, stock int64) *entity.Product {
	t.Helper()
	p, err := entity.NewProduct(name, "un", decimal.NewFromInt(5), decimal.NewFromInt(stock))
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), p))
	return p
}

func TestProductStore_CreateYGet(t *testing.T) {
	s := memory.NewProductStore()
	p := newProduct(t, s, "Arroz", 10)

	got, err := s.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arroz", got.Name)
	assert.True(t, got.Stock.Equal(decimal.NewFromInt(10)))

	assert.ErrorIs(t, s.Create(context.Background(), p), domain.ErrDuplicate)

	_, err = s.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductStore_GetDevuelveCopia(t *testing.T) {
	s := memory.NewProductStore()
	p := newProduct(t, s, "Feijão", 3)

	got, err := s.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	got.Stock = decimal.NewFromInt(999)

	again, err := s.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, again.Stock.Equal(decimal.NewFromInt(3)), "modificar la copia no debe tocar el saldo")
}

func TestProductStore_ApplyDelta(t *testing.T) {
	ctx := context.Background()
	s := memory.NewProductStore()
	p := newProduct(t, s, "Leite", 10)

	bal, err := s.ApplyDelta(ctx, p.ID, decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.NewFromInt(15)))

	_, err = s.ApplyDelta(ctx, p.ID, decimal.NewFromInt(-16))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, _ := s.GetByID(ctx, p.ID)
	assert.True(t, got.Stock.Equal(decimal.NewFromInt(15)), "el rechazo no debe modificar el saldo")

	bal, err = s.ApplyDelta(ctx, p.ID, decimal.NewFromInt(-15))
	require.NoError(t, err)
	assert.True(t, bal.IsZero())

	_, err = s.ApplyDelta(ctx, "no-existe", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductStore_ApplyDeltaConcurrente(t *testing.T) {
	ctx := context.Background()
	s := memory.NewProductStore()
	p := newProduct(t, s, "Açúcar", 100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.ApplyDelta(ctx, p.ID, decimal.NewFromInt(3))
		}()
		go func() {
			defer wg.Done()
			_, _ = s.ApplyDelta(ctx, p.ID, decimal.NewFromInt(-2))
		}()
	}
	wg.Wait()

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	// 100 + 50*3 - 50*2: las salidas nunca fallan porque el saldo arranca en 100.
	assert.True(t, got.Stock.Equal(decimal.NewFromInt(150)), "saldo final %s", got.Stock)
}

func TestProductStore_ListEsReiniciable(t *testing.T) {
	ctx := context.Background()
	s := memory.NewProductStore()
	a := newProduct(t, s, "A", 1)
	newProduct(t, s, "B", 2)

	var names []string
	for p, err := range s.List(ctx) {
		require.NoError(t, err)
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"A", "B"}, names)

	_, err := s.ApplyDelta(ctx, a.ID, decimal.NewFromInt(4))
	require.NoError(t, err)
	newProduct(t, s, "C", 3)

	var stocks []string
	for p, err := range s.List(ctx) {
		require.NoError(t, err)
		stocks = append(stocks, p.Stock.String())
	}
	assert.Equal(t, []string{"5", "2", "3"}, stocks, "una nueva iteración refleja el estado actual")
}

func TestProductStore_ListCorteTemprano(t *testing.T) {
	s := memory.NewProductStore()
	newProduct(t, s, "A", 1)
	newProduct(t, s, "B", 1)

	n := 0
	for range s.List(context.Background()) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestMovementLog_ListByProduct(t *testing.T) {
	ctx := context.Background()
	l := memory.NewMovementLog()
	for i, pid := range []string{"p1", "p2", "p1", "p1"} {
		require.NoError(t, l.Create(ctx, &entity.StockMovement{
			ID:        string(rune('a' + i)),
			ProductID: pid,
			Type:      entity.MovementTypeIN,
			Quantity:  decimal.NewFromInt(1),
		}))
	}

	list, err := l.ListByProduct(ctx, "p1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "d", list[0].ID, "más reciente primero")
	assert.Equal(t, "a", list[2].ID)

	page, err := l.ListByProduct(ctx, "p1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].ID)
}

func TestOrderLines_Resolve(t *testing.T) {
	o := memory.NewOrderLines()
	o.Put("item-1", "p1", decimal.NewFromInt(2))

	line, err := o.Resolve(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", line.ProductID)
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(2)))

	_, err = o.Resolve(context.Background(), "item-x")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, o.Create(context.Background(), &entity.OrderLine{ID: "item-2", ProductID: "p2", Quantity: decimal.NewFromInt(1)}))
	assert.ErrorIs(t, o.Create(context.Background(), &entity.OrderLine{ID: "item-2", ProductID: "p3"}), domain.ErrDuplicate)
	line, err = o.Resolve(context.Background(), "item-2")
	require.NoError(t, err)
	assert.Equal(t, "p2", line.ProductID)
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	s := memory.NewUserStore()
	u := &entity.User{ID: "u1", Email: "ana@loja.com"}
	require.NoError(t, s.Create(ctx, u))
	assert.ErrorIs(t, s.Create(ctx, u), domain.ErrEmailAlreadyExists)

	got, err := s.FindByEmail(ctx, "ana@loja.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	missing, err := s.FindByEmail(ctx, "nadie@loja.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTxRunner_RetieneProductoHastaTerminar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewProductStore()
	log := memory.NewMovementLog()
	p := newProduct(t, store, "Óleo", 10)
	runner := memory.NewTxRunner(store, log)

	applied := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx, func(products repository.ProductRepository, movs repository.StockMovementRepository) error {
			bal, err := products.ApplyDelta(ctx, p.ID, decimal.NewFromInt(-3))
			if err != nil {
				return err
			}
			// lectura dentro de la misma tx con el lock tomado
			if _, err := products.GetByID(ctx, p.ID); err != nil {
				return err
			}
			close(applied)
			<-release
			return movs.Create(ctx, &entity.StockMovement{ID: "a", ProductID: p.ID, Type: entity.MovementTypeOUT, Quantity: decimal.NewFromInt(3), BalanceAfter: bal})
		})
	}()
	<-applied

	other := make(chan decimal.Decimal, 1)
	go func() {
		bal, _ := store.ApplyDelta(ctx, p.ID, decimal.NewFromInt(-2))
		other <- bal
	}()

	select {
	case <-other:
		t.Fatal("ApplyDelta no debe avanzar mientras otra tx retiene el producto")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
	assert.True(t, (<-other).Equal(decimal.NewFromInt(5)))

	movs, err := log.ListByProduct(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1, "el movimiento se agregó antes de liberar el producto")
}
