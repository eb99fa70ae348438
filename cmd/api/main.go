package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/estoque-api/docs"
	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/cache"
	"github.com/jhoicas/estoque-api/internal/infrastructure/kafka"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/internal/infrastructure/metrics"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/estoque-api/internal/interfaces/http"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// storage agrupa los adaptadores de persistencia del driver elegido.
type storage struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	users     repository.UserRepository
	resolver  inventory.OrderLineResolver
	txRunner  inventory.TxRunner
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observers := []inventory.MovementObserver{metrics.NewLedgerMetrics(reg)}

	products := store.products
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		productCache := cache.NewProductCache(store.products, rdb, cfg.Redis.TTL, log)
		products = productCache
		observers = append(observers, productCache)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("cache de productos activo")
	}

	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Kafka")
		}
		publisher := kafka.NewMovementPublisher(producer, cfg.Kafka.Topic, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		observers = append(observers, publisher)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de movimientos activa")
	}

	ledger := inventory.NewStockLedger(store.txRunner, store.resolver, log, observers...)
	history := inventory.NewMovementHistoryUseCase(products, store.movements)
	productUC := usecase.NewProductUseCase(products)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log, metrics.NewHTTPMetrics(reg)))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
		Path:        "docs",
		Title:       "Estoque API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		Ledger:      ledger,
		History:     history,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		Gatherer:    reg,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage construye los adaptadores según STORAGE_DRIVER. En memoria aplica SEED_*.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		products := memory.NewProductStore()
		movements := memory.NewMovementLog()
		lines := memory.NewOrderLines()
		if err := seedMemory(ctx, cfg.Seed, products, lines, log); err != nil {
			return nil, fmt.Errorf("poblar almacenamiento en memoria: %w", err)
		}
		return &storage{
			products:  products,
			movements: movements,
			users:     memory.NewUserStore(),
			resolver:  lines,
			txRunner:  memory.NewTxRunner(products, movements),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		users:     postgres.NewUserRepository(pool),
		resolver:  postgres.NewOrderLineRepository(pool),
		txRunner:  postgres.NewTxRunner(pool),
		close:     pool.Close,
	}, nil
}

// errorHandler responde los errores de Fiber (404 de ruta, 405, body demasiado grande) con el formato de la API.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	msg := "error interno"
	if code < fiber.StatusInternalServerError {
		msg = err.Error()
	}
	return c.Status(code).JSON(dto.ErrorResponse{Code: "HTTP_" + strconv.Itoa(code), Message: msg})
}
