package main

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/jhoicas/estoque-api/internal/application/importer"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/internal/infrastructure/memory"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// seedMemory puebla el driver en memoria con SEED_CATALOG_FILE y SEED_ORDER_ITEMS_FILE.
// El catálogo va primero: los items referencian productos por ID o por nombre.
func seedMemory(ctx context.Context, cfg config.SeedConfig, products *memory.ProductStore, lines *memory.OrderLines, log *logger.Logger) error {
	sep, _ := utf8.DecodeRuneInString(cfg.Separator)

	if cfg.CatalogFile != "" {
		f, err := os.Open(cfg.CatalogFile)
		if err != nil {
			return fmt.Errorf("abrir %s: %w", cfg.CatalogFile, err)
		}
		res, err := importer.ImportCatalog(ctx, f, cfg.Charset, sep, usecase.NewProductUseCase(products), log)
		f.Close()
		if err != nil {
			return err
		}
		log.Info().Int("imported", res.Imported).Int("skipped", res.Skipped).Str("file", cfg.CatalogFile).Msg("catálogo cargado en memoria")
	}

	if cfg.OrderItemsFile != "" {
		f, err := os.Open(cfg.OrderItemsFile)
		if err != nil {
			return fmt.Errorf("abrir %s: %w", cfg.OrderItemsFile, err)
		}
		res, err := importer.ImportOrderItems(ctx, f, cfg.Charset, sep, products, lines, log)
		f.Close()
		if err != nil {
			return err
		}
		log.Info().Int("imported", res.Imported).Int("skipped", res.Skipped).Str("file", cfg.OrderItemsFile).Msg("items de pedido cargados en memoria")
	}
	return nil
}
