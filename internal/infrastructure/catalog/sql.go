package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// WriteSQL escribe un upsert por producto. Con keepStock el stock existente no se pisa:
// el script solo fija stock al insertar productos nuevos.
func WriteSQL(w io.Writer, source string, products []entity.Product, keepStock bool) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Catálogo de productos generado desde %s (%d productos)\n\n", source, len(products))
	if len(products) == 0 {
		return bw.Flush()
	}
	bw.WriteString("INSERT INTO products (id, name, price, stock, status) VALUES\n")
	for i, p := range products {
		sep := ","
		if i == len(products)-1 {
			sep = ""
		}
		fmt.Fprintf(bw, "  ('%s', '%s', %s, %d, '%s')%s\n",
			escapeSQL(p.ID), escapeSQL(p.Name), p.Price.StringFixed(2), p.Stock, entity.ProductStatusActive, sep)
	}
	bw.WriteString("ON CONFLICT (id) DO UPDATE SET\n")
	bw.WriteString("  name = EXCLUDED.name,\n")
	bw.WriteString("  price = EXCLUDED.price,\n")
	if !keepStock {
		bw.WriteString("  stock = EXCLUDED.stock,\n")
	}
	bw.WriteString("  updated_at = now();\n")
	return bw.Flush()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
