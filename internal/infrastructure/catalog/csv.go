// Package catalog importa catálogos de productos exportados desde hojas de cálculo
// y los convierte en scripts SQL de carga para PostgreSQL.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// Codificaciones aceptadas para el archivo de entrada.
const (
	CharsetUTF8        = "utf-8"
	CharsetLatin1      = "iso-8859-1"
	CharsetWindows1252 = "windows-1252"
)

// ErrUnknownCharset codificación no soportada.
var ErrUnknownCharset = errors.New("codificación no soportada (utf-8, iso-8859-1, windows-1252)")

// Columnas: id;nombre;precio;stock. El separador puede ser ',' o ';'.
const columns = 4

// NewReader envuelve r para decodificar charset a UTF-8.
func NewReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", CharsetUTF8, "utf8":
		return r, nil
	case CharsetLatin1, "latin1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case CharsetWindows1252, "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, ErrUnknownCharset
}

// Decode lee el catálogo. Omite la fila de encabezado si la primera celda es "id"
// y las filas vacías. Un error indica la línea del archivo.
func Decode(r io.Reader, charset string, sep rune) ([]entity.Product, error) {
	dec, err := NewReader(r, charset)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dec)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		out  []entity.Product
		seen = make(map[string]int)
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(out) == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(rec[0]), "\ufeff"), "id") {
			continue
		}
		if isBlank(rec) {
			continue
		}
		p, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if prev, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("línea %d: id %q repetido (línea %d)", line, p.ID, prev)
		}
		seen[p.ID] = line
		out = append(out, p)
	}
	return out, nil
}

func parseRow(rec []string) (entity.Product, error) {
	if len(rec) < columns {
		return entity.Product{}, fmt.Errorf("se esperaban %d columnas, hay %d", columns, len(rec))
	}
	id := strings.TrimSpace(rec[0])
	name := strings.TrimSpace(rec[1])
	if id == "" || name == "" {
		return entity.Product{}, errors.New("id y nombre son obligatorios")
	}
	price, err := parsePrice(rec[2])
	if err != nil {
		return entity.Product{}, err
	}
	stock, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil || stock < 0 {
		return entity.Product{}, fmt.Errorf("stock inválido %q", rec[3])
	}
	return entity.Product{ID: id, Name: name, Price: price, Stock: stock, Status: entity.ProductStatusActive}, nil
}

// parsePrice acepta "4500", "4500.50", "4500,50" y "$ 4.500" (punto de miles con coma decimal).
func parsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if strings.Count(s, ".") > 1 || (strings.Contains(s, ".") && len(s)-strings.LastIndex(s, ".") == 4) {
		// "4.500" o "1.250.000": puntos de miles
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("precio inválido %q", raw)
	}
	return d, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
