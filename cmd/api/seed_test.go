package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/pkg/config"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestOpenStorage_MemoriaPobladaPermiteConfirmarItems(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	item := uuid.NewString()

	cfg := &config.Config{
		App: config.AppConfig{StorageDriver: config.StorageDriverMemory},
		Seed: config.SeedConfig{
			CatalogFile:    writeFile(t, dir, "catalogo.csv", "nome;formato;preco;estoque\nArroz;5kg;25,90;10\n"),
			OrderItemsFile: writeFile(t, dir, "items.csv", "id;produto;quantidade\n"+item+";Arroz;4\n"),
			Charset:        "utf-8",
			Separator:      ";",
		},
	}

	store, err := openStorage(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	defer store.close()

	ledger := inventory.NewStockLedger(store.txRunner, store.resolver, logger.NewNop())
	bal, err := ledger.RegisterOutgoing(ctx, item, "00000000-0000-0000-0000-0000000000aa")
	require.NoError(t, err)
	assert.Equal(t, "6", bal.String())

	_, err = ledger.RegisterOutgoing(ctx, uuid.NewString(), "00000000-0000-0000-0000-0000000000aa")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenStorage_ArchivoDeSeedInexistente(t *testing.T) {
	cfg := &config.Config{
		App:  config.AppConfig{StorageDriver: config.StorageDriverMemory},
		Seed: config.SeedConfig{CatalogFile: filepath.Join(t.TempDir(), "no-existe.csv"), Separator: ";"},
	}
	_, err := openStorage(context.Background(), cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestOpenStorage_MemoriaSinSeedArrancaVacia(t *testing.T) {
	cfg := &config.Config{
		App:  config.AppConfig{StorageDriver: config.StorageDriverMemory},
		Seed: config.SeedConfig{Separator: ";"},
	}
	store, err := openStorage(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer store.close()

	n := 0
	for range store.products.List(context.Background()) {
		n++
	}
	assert.Zero(t, n)
}
