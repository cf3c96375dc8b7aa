package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea solicitada. Price y Name se aceptan por compatibilidad pero se ignoran:
// el pedido siempre captura el nombre y precio vigentes del producto.
type OrderItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Name      string           `json:"name,omitempty"`
}

// ShippingAddressDTO dirección de envío.
type ShippingAddressDTO struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	UserID          string             `json:"user_id"`
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress ShippingAddressDTO `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePaymentStatusRequest body para PATCH /api/orders/:id/payment.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

// OrderItemResponse línea capturada del pedido.
type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Items           []OrderItemResponse `json:"items"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Status          string              `json:"status"`
	ShippingAddress ShippingAddressDTO  `json:"shipping_address"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentStatus   string              `json:"payment_status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// OrderListResponse página de pedidos.
type OrderListResponse struct {
	Items      []OrderResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
