package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse salida de un producto con su stock actual.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockResponse stock actual de un producto.
type StockResponse struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}
