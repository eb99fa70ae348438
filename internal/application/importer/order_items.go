package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// OrderLineWriter persiste items de pedido. Lo implementan postgres.OrderLineRepo y memory.OrderLines.
type OrderLineWriter interface {
	Create(ctx context.Context, line *entity.OrderLine) error
}

// ImportOrderItems lee filas id;producto;cantidad y registra cada item con w.
// id vacío genera un UUID nuevo. producto es el ID del producto o su nombre exacto,
// que debe identificar un único producto del catálogo.
func ImportOrderItems(ctx context.Context, r io.Reader, charset string, sep rune, products repository.ProductRepository, w OrderLineWriter, log *logger.Logger) (Result, error) {
	var res Result
	cr, err := newCSVReader(r, charset, sep)
	if err != nil {
		return res, err
	}
	catalog, err := indexCatalog(ctx, products)
	if err != nil {
		return res, err
	}

	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && isHeader(record, "id", "item") {
			continue
		}
		item, err := parseOrderItemRow(record, sep, catalog)
		if err == nil {
			err = w.Create(ctx, item)
		}
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("fila de items omitida")
			res.Skipped++
			continue
		}
		log.Debug().Str("order_item_id", item.ID).Str("product_id", item.ProductID).Msg("item de pedido importado")
		res.Imported++
	}
}

// catalogIndex resuelve productos por ID o por nombre.
type catalogIndex struct {
	ids    map[string]struct{}
	byName map[string][]string
}

func indexCatalog(ctx context.Context, products repository.ProductRepository) (catalogIndex, error) {
	idx := catalogIndex{ids: make(map[string]struct{}), byName: make(map[string][]string)}
	for p, err := range products.List(ctx) {
		if err != nil {
			return idx, fmt.Errorf("leer catálogo: %w", err)
		}
		idx.ids[p.ID] = struct{}{}
		idx.byName[p.Name] = append(idx.byName[p.Name], p.ID)
	}
	return idx, nil
}

func (idx catalogIndex) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if _, ok := idx.ids[ref]; ok {
		return ref, nil
	}
	switch ids := idx.byName[norm.NFC.String(ref)]; len(ids) {
	case 1:
		return ids[0], nil
	case 0:
		return "", fmt.Errorf("producto %q: %w", ref, domain.ErrNotFound)
	default:
		return "", fmt.Errorf("producto %q ambiguo (%d coincidencias): %w", ref, len(ids), domain.ErrInvalidInput)
	}
}

func parseOrderItemRow(record []string, sep rune, catalog catalogIndex) (*entity.OrderLine, error) {
	if len(record) < 3 {
		return nil, fmt.Errorf("se esperaban 3 columnas, hay %d: %w", len(record), domain.ErrInvalidInput)
	}
	id := strings.TrimSpace(record[0])
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("id %q no es UUID: %w", id, domain.ErrInvalidInput)
	}
	productID, err := catalog.resolve(record[1])
	if err != nil {
		return nil, err
	}
	qty, err := parseNumber(record[2], sep)
	if err != nil {
		return nil, fmt.Errorf("cantidad: %w", err)
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("cantidad debe ser mayor que cero: %w", domain.ErrInvalidInput)
	}
	return &entity.OrderLine{ID: id, ProductID: productID, Quantity: qty}, nil
}
