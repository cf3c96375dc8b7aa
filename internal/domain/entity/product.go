package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de catálogo del producto.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product representa un producto del catálogo.
// Stock es la única fuente de verdad de disponibilidad; solo cambia vía pedidos o movimientos de kardex.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio de venta vigente (los pedidos guardan su propia copia)
	Stock     int
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
