package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

var (
	_ repository.ProductRepository = (*ProductCache)(nil)
	_ inventory.MovementObserver   = (*ProductCache)(nil)
)

// DefaultTTL se usa si no se configura CACHE_TTL_SECONDS.
const DefaultTTL = 60 * time.Second

func productKey(id string) string {
	return "product:" + id
}

// genKey contador de invalidaciones del producto. Cada invalidación lo incrementa antes de borrar
// productKey; un llenado solo escribe si el contador no cambió desde que empezó a leer.
func genKey(id string) string {
	return "product:" + id + ":gen"
}

// fillScript SET condicionado a la generación leída antes de consultar el repositorio.
// KEYS[1]=productKey KEYS[2]=genKey ARGV[1]=generación ARGV[2]=payload ARGV[3]=ttl en ms.
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// cachedProduct forma serializada en Redis. Los decimales viajan como string.
type cachedProduct struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Format    string          `json:"format"`
	Price     decimal.Decimal `json:"price"`
	Stock     decimal.Decimal `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func encodeProduct(p *entity.Product) (string, error) {
	data, err := json.Marshal(cachedProduct{
		ID: p.ID, Name: p.Name, Format: p.Format, Price: p.Price, Stock: p.Stock,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeProduct(raw string) (*entity.Product, error) {
	var c cachedProduct
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, err
	}
	return &entity.Product{
		ID: c.ID, Name: c.Name, Format: c.Format, Price: c.Price, Stock: c.Stock,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}, nil
}

// ProductCache decorador cache-aside de ProductRepository sobre Redis.
// Solo GetByID se sirve desde Redis; las escrituras van al repositorio, incrementan la
// generación del producto y borran la clave.
// Como observer del ledger borra la clave tras cada movimiento confirmado.
// Un Redis caído degrada a lecturas directas, nunca a errores.
type ProductCache struct {
	next  repository.ProductRepository
	rdb   redis.Cmdable
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group
}

// NewProductCache envuelve next. ttl <= 0 usa DefaultTTL.
func NewProductCache(next repository.ProductRepository, rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCache{next: next, rdb: rdb, ttl: ttl, log: log}
}

// Create delega y descarta cualquier clave previa con el mismo ID.
func (c *ProductCache) Create(ctx context.Context, product *entity.Product) error {
	if err := c.next.Create(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx, product.ID)
	return nil
}

// GetByID lee de Redis; en miss consulta el repositorio una sola vez por clave aunque haya
// llamadores concurrentes, y guarda el resultado con TTL si nadie invalidó la clave mientras tanto.
// Un llamador cancelado deja de esperar, pero la carga compartida sigue para el resto.
func (c *ProductCache) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	key := productKey(id)
	raw, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if p, decErr := decodeProduct(raw); decErr == nil {
			return p, nil
		}
		c.log.Warn().Str("key", key).Msg("entrada de cache corrupta, se ignora")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("redis get falló, lectura directa")
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(loadCtx, id)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		p := *res.Val.(*entity.Product)
		return &p, nil
	}
}

// load lee la generación, consulta el repositorio y llena la clave con fillScript.
func (c *ProductCache) load(ctx context.Context, id string) (*entity.Product, error) {
	key := productKey(id)
	gen, err := c.rdb.Get(ctx, genKey(id)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		gen = "0"
	case err != nil:
		c.log.Warn().Err(err).Str("key", key).Msg("redis get de generación falló, no se cachea")
		return c.next.GetByID(ctx, id)
	}

	p, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	payload, err := encodeProduct(p)
	if err != nil {
		return p, nil
	}
	stored, err := fillScript.Run(ctx, c.rdb, []string{key, genKey(id)}, gen, payload, c.ttl.Milliseconds()).Int()
	switch {
	case err != nil:
		c.log.Warn().Err(err).Str("key", key).Msg("redis set falló")
	case stored == 0:
		c.log.Debug().Str("key", key).Msg("invalidada durante la carga, no se cachea")
	}
	return p, nil
}

// List no se cachea.
func (c *ProductCache) List(ctx context.Context) iter.Seq2[*entity.Product, error] {
	return c.next.List(ctx)
}

// ApplyDelta delega y borra la clave del producto.
func (c *ProductCache) ApplyDelta(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	balance, err := c.next.ApplyDelta(ctx, id, delta)
	if err != nil {
		return balance, err
	}
	c.invalidate(ctx, id)
	return balance, nil
}

// MovementCommitted borra la clave del producto movido.
func (c *ProductCache) MovementCommitted(ctx context.Context, mov entity.StockMovement) {
	c.invalidate(ctx, mov.ProductID)
}

// MovementRejected no cambia el saldo, no hay nada que invalidar.
func (c *ProductCache) MovementRejected(context.Context, string, error) {}

func (c *ProductCache) invalidate(ctx context.Context, id string) {
	if err := c.rdb.Incr(ctx, genKey(id)).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", id).Msg("redis incr falló")
	}
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", id).Msg("redis del falló")
	}
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return rdb, nil
}
