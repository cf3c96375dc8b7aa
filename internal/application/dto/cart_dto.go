package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddCartItemRequest body para POST /api/cart.
type AddCartItemRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest body para PUT /api/cart/:product_id.
type UpdateCartItemRequest struct {
	UserID   string `json:"user_id"`
	Quantity int    `json:"quantity"`
}

// CartItemResponse línea del carrito con los datos vigentes del producto.
type CartItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse carrito "poblado". Items nunca es nil (vacío si el usuario no tiene carrito).
type CartResponse struct {
	ID            string             `json:"id,omitempty"`
	UserID        string             `json:"user_id"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	UpdatedAt     *time.Time         `json:"updated_at,omitempty"`
}
