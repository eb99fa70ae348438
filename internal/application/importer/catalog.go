package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/usecase"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// ImportCatalog lee filas nombre;formato;precio;stock y crea cada producto con ProductUseCase.
// La primera fila se descarta si es cabecera. Las filas inválidas se registran y se omiten.
func ImportCatalog(ctx context.Context, r io.Reader, charset string, sep rune, uc *usecase.ProductUseCase, log *logger.Logger) (Result, error) {
	var res Result
	cr, err := newCSVReader(r, charset, sep)
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
		if line == 1 && isHeader(record, "nome", "name", "nombre") {
			continue
		}
		in, err := parseProductRow(record, sep)
		if err == nil {
			_, err = uc.Create(ctx, in)
		}
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("fila de catálogo omitida")
			res.Skipped++
			continue
		}
		res.Imported++
	}
}

func parseProductRow(record []string, sep rune) (dto.CreateProductRequest, error) {
	if len(record) < 4 {
		return dto.CreateProductRequest{}, fmt.Errorf("se esperaban 4 columnas, hay %d", len(record))
	}
	price, err := parseNumber(record[2], sep)
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("precio: %w", err)
	}
	stock, err := parseNumber(record[3], sep)
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("stock: %w", err)
	}
	return dto.CreateProductRequest{
		Name:   record[0],
		Format: strings.TrimSpace(record[1]),
		Price:  price,
		Stock:  stock,
	}, nil
}
