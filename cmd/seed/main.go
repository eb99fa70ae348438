// seed importa un catálogo de productos y items de pedido desde CSV y, opcionalmente, crea el
// usuario admin inicial.
//
// Uso:
//
//	go run ./cmd/seed [-file catalogo.csv] [-order-items items.csv] [-charset iso-8859-1] [-sep ';'] \
//		[-admin-email x -admin-password y]
//
// Usa la misma configuración que la API (DATABASE_URL, DB_*, ...).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/jhoicas/estoque-api/internal/application/auth"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/importer"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

func main() {
	file := flag.String("file", "", "CSV del catálogo: nombre;formato;precio;stock")
	orderItems := flag.String("order-items", "", "CSV de items de pedido: id;producto;cantidad")
	charset := flag.String("charset", importer.CharsetUTF8, "codificación de los CSV: utf-8 | iso-8859-1")
	sep := flag.String("sep", ";", "separador de campos")
	adminEmail := flag.String("admin-email", "", "crear usuario admin con este email")
	adminPassword := flag.String("admin-password", "", "password del admin")
	flag.Parse()

	if err := run(*file, *orderItems, *charset, *sep, *adminEmail, *adminPassword); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(file, orderItems, charset, sep, adminEmail, adminPassword string) error {
	if file == "" && orderItems == "" && adminEmail == "" {
		return errors.New("nada que hacer: indicar -file, -order-items y/o -admin-email")
	}
	if utf8.RuneCountInString(sep) != 1 {
		return fmt.Errorf("separador inválido: %q", sep)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	if adminEmail != "" {
		authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
			Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
		})
		user, err := authUC.RegisterAdmin(ctx, dto.RegisterRequest{Name: "admin", Email: adminEmail, Password: adminPassword})
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			log.Info().Str("email", adminEmail).Msg("admin ya existe")
		case err != nil:
			return fmt.Errorf("crear admin: %w", err)
		default:
			log.Info().Str("id", user.ID).Str("email", user.Email).Msg("admin creado")
		}
	}

	sepRune, _ := utf8.DecodeRuneInString(sep)
	products := postgres.NewProductRepository(pool)

	if file != "" {
		res, err := importFile(file, func(f *os.File) (importer.Result, error) {
			return importer.ImportCatalog(ctx, f, charset, sepRune, usecase.NewProductUseCase(products), log)
		})
		if err != nil {
			return err
		}
		log.Info().Int("imported", res.Imported).Int("skipped", res.Skipped).Str("file", file).Msg("catálogo importado")
	}

	if orderItems != "" {
		res, err := importFile(orderItems, func(f *os.File) (importer.Result, error) {
			return importer.ImportOrderItems(ctx, f, charset, sepRune, products, postgres.NewOrderLineRepository(pool), log)
		})
		if err != nil {
			return err
		}
		log.Info().Int("imported", res.Imported).Int("skipped", res.Skipped).Str("file", orderItems).Msg("items de pedido importados")
	}
	return nil
}

func importFile(path string, fn func(*os.File) (importer.Result, error)) (importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()
	return fn(f)
}
