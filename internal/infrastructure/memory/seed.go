package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// SeedDemo carga un catálogo y clientes de ejemplo con IDs fijos (desarrollo local).
func SeedDemo(s *Store) {
	now := time.Now().UTC()
	products := []struct {
		id, name, price string
		stock           int
	}{
		{"p-cuaderno-100", "Cuaderno cuadriculado 100 hojas", "4500", 120},
		{"p-lapiz-hb", "Lápiz grafito HB", "900", 500},
		{"p-borrador", "Borrador de nata", "700", 300},
		{"p-resma-carta", "Resma papel carta 75 g", "21900", 40},
		{"p-marcador-negro", "Marcador permanente negro", "3200", 10},
	}
	for _, p := range products {
		s.PutProduct(&entity.Product{
			ID:        p.id,
			Name:      p.name,
			Price:     decimal.RequireFromString(p.price),
			Stock:     p.stock,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	s.PutCustomer(&entity.Customer{ID: "u-demo-1", Name: "Cliente Demo", Email: "demo@papeleria.local", CreatedAt: now})
	s.PutCustomer(&entity.Customer{ID: "u-demo-2", Name: "Colegio Demo", Email: "compras@colegio.local", CreatedAt: now})
}
