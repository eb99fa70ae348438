package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

const testTTL = 30 * time.Second

func newProduct(t *testing.T, store *memory.ProductStore) *entity.Product {
	t.Helper()
	p, err := entity.NewProduct("Feijão", "1kg", decimal.RequireFromString("7.50"), decimal.NewFromInt(12))
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), p))
	return p
}

func storedPayload(t *testing.T, repo repository.ProductRepository, id string) string {
	t.Helper()
	p, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	payload, err := encodeProduct(p)
	require.NoError(t, err)
	return payload
}

func expectFill(mock redismock.ClientMock, id, gen, payload string) *redismock.ExpectedCmd {
	return mock.ExpectEvalSha(fillScript.Hash(), []string{productKey(id), genKey(id)}, gen, payload, testTTL.Milliseconds())
}

func TestProductCache_MissLoadsAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := memory.NewProductStore()
	p := newProduct(t, store)
	c := NewProductCache(store, db, testTTL, logger.NewNop())

	mock.ExpectGet(productKey(p.ID)).RedisNil()
	mock.ExpectGet(genKey(p.ID)).RedisNil()
	expectFill(mock, p.ID, "0", storedPayload(t, store, p.ID)).SetVal(int64(1))

	got, err := c.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, got.Stock.Equal(decimal.NewFromInt(12)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCache_HitSkipsRepository(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewProductCache(memory.NewProductStore(), db, testTTL, logger.NewNop())

	p, err := entity.NewProduct("Arroz", "5kg", decimal.NewFromInt(25), decimal.NewFromInt(3))
	require.NoError(t, err)
	payload, err := encodeProduct(p)
	require.NoError(t, err)

	mock.ExpectGet(productKey(p.ID)).SetVal(payload)

	got, err := c.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arroz", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(25)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCache_NotFoundIsNotCached(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewProductCache(memory.NewProductStore(), db, testTTL, logger.NewNop())

	mock.ExpectGet(productKey("missing")).RedisNil()
	mock.ExpectGet(genKey("missing")).RedisNil()

	_, err := c.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCache_RedisDownFallsBack(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := memory.NewProductStore()
	p := newProduct(t, store)
	c := NewProductCache(store, db, testTTL, logger.NewNop())

	mock.ExpectGet(productKey(p.ID)).SetErr(errors.New("connection refused"))
	mock.ExpectGet(genKey(p.ID)).SetErr(errors.New("connection refused"))

	got, err := c.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCache_ApplyDeltaInvalidates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := memory.NewProductStore()
	p := newProduct(t, store)
	c := NewProductCache(store, db, testTTL, logger.NewNop())

	mock.ExpectIncr(genKey(p.ID)).SetVal(1)
	mock.ExpectDel(productKey(p.ID)).SetVal(1)

	balance, err := c.ApplyDelta(context.Background(), p.ID, decimal.NewFromInt(-2))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(10)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCache_FailedApplyDeltaKeepsKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := memory.NewProductStore()
	p := newProduct(t, store)
	c := NewProductCache(store, db, testTTL, logger.NewNop())

	_, err := c.ApplyDelta(context.Background(), p.ID, decimal.NewFromInt(-13))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductCache_MovementCommittedInvalidates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewProductCache(memory.NewProductStore(), db, testTTL, logger.NewNop())

	mock.ExpectIncr(genKey("p-1")).SetVal(3)
	mock.ExpectDel(productKey("p-1")).SetVal(0)
	c.MovementCommitted(context.Background(), entity.StockMovement{ProductID: "p-1", Type: entity.MovementTypeIN})
	c.MovementRejected(context.Background(), entity.MovementTypeOUT, domain.ErrInsufficientStock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// hookedRepo ejecuta afterRead una vez, entre la lectura del repositorio y el retorno.
type hookedRepo struct {
	*memory.ProductStore
	afterRead func()
}

func (r *hookedRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := r.ProductStore.GetByID(ctx, id)
	if r.afterRead != nil {
		hook := r.afterRead
		r.afterRead = nil
		hook()
	}
	return p, err
}

func TestProductCache_MovimientoDuranteLaCargaNoDejaSaldoViejo(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	store := memory.NewProductStore()
	p := newProduct(t, store)
	repo := &hookedRepo{ProductStore: store}
	c := NewProductCache(repo, db, testTTL, logger.NewNop())

	stale := storedPayload(t, store, p.ID)
	repo.afterRead = func() {
		_, err := store.ApplyDelta(ctx, p.ID, decimal.NewFromInt(-12))
		require.NoError(t, err)
		c.MovementCommitted(ctx, entity.StockMovement{ProductID: p.ID, Type: entity.MovementTypeOUT})
	}

	mock.ExpectGet(productKey(p.ID)).RedisNil()
	mock.ExpectGet(genKey(p.ID)).RedisNil()
	mock.ExpectIncr(genKey(p.ID)).SetVal(1)
	mock.ExpectDel(productKey(p.ID)).SetVal(0)
	// El llenado usa la generación leída antes de la carga; Redis ya tiene 1 y no escribe.
	expectFill(mock, p.ID, "0", stale).SetVal(int64(0))

	first, err := c.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, first.Stock.Equal(decimal.NewFromInt(12)))
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectGet(productKey(p.ID)).RedisNil()
	mock.ExpectGet(genKey(p.ID)).SetVal("1")
	expectFill(mock, p.ID, "1", storedPayload(t, store, p.ID)).SetVal(int64(1))

	second, err := c.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, second.Stock.IsZero(), "la lectura siguiente ve el saldo confirmado, stock=%s", second.Stock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// blockingRepo detiene GetByID hasta release y guarda ctx.Err() al continuar.
type blockingRepo struct {
	*memory.ProductStore
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (r *blockingRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	close(r.started)
	<-r.release
	r.ctxErr <- ctx.Err()
	return r.ProductStore.GetByID(ctx, id)
}

func TestProductCache_LlamadorCanceladoNoCortaLaCargaCompartida(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := memory.NewProductStore()
	p := newProduct(t, store)
	repo := &blockingRepo{
		ProductStore: store,
		started:      make(chan struct{}),
		release:      make(chan struct{}),
		ctxErr:       make(chan error, 1),
	}
	c := NewProductCache(repo, db, testTTL, logger.NewNop())

	mock.ExpectGet(productKey(p.ID)).RedisNil()
	mock.ExpectGet(genKey(p.ID)).RedisNil()
	expectFill(mock, p.ID, "0", storedPayload(t, store, p.ID)).SetVal(int64(1))

	ctx, cancel := context.WithCancel(context.Background())
	res := make(chan error, 1)
	go func() {
		_, err := c.GetByID(ctx, p.ID)
		res <- err
	}()
	<-repo.started
	cancel()
	assert.ErrorIs(t, <-res, context.Canceled)

	close(repo.release)
	// Do se une a la carga en curso (o corre vacío si ya terminó): al volver, la carga terminó.
	_, _, _ = c.group.Do(productKey(p.ID), func() (any, error) { return nil, nil })

	assert.NoError(t, <-repo.ctxErr, "la carga compartida no hereda la cancelación del primer llamador")
	assert.NoError(t, mock.ExpectationsWereMet())
}
