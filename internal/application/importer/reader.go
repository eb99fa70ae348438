// Package importer carga catálogo e items de pedido desde archivos CSV (UTF-8 o ISO-8859-1).
// Lo usan cmd/seed contra PostgreSQL y cmd/api para poblar el driver en memoria.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Codificaciones aceptadas.
const (
	CharsetUTF8   = "utf-8"
	CharsetLatin1 = "iso-8859-1"
)

// Result resumen de una importación.
type Result struct {
	Imported int
	Skipped  int
}

// decode devuelve r decodificado a UTF-8 según charset.
func decode(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "", CharsetUTF8, "utf8":
		return r, nil
	case CharsetLatin1, "latin1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	}
	return nil, fmt.Errorf("charset no soportado: %s", charset)
}

func newCSVReader(r io.Reader, charset string, sep rune) (*csv.Reader, error) {
	src, err := decode(r, charset)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(src)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr, nil
}

// isHeader la primera fila es cabecera si su primera columna es uno de names.
func isHeader(record []string, names ...string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(record[0]))
	for _, n := range names {
		if first == n {
			return true
		}
	}
	return false
}

// parseNumber acepta coma decimal cuando el separador de campos no es la coma ("6,40").
func parseNumber(raw string, sep rune) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if sep != ',' {
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	return decimal.NewFromString(raw)
}
