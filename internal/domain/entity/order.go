package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"

	// orderStatusCompleted alias aceptado de delivered.
	orderStatusCompleted = "completed"
)

// Métodos y estados de pago (solo se guardan en el pedido; la contabilidad de pagos es externa).
const (
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// orderTransitions tabla de adyacencia de la máquina de estados.
var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// NormalizeOrderStatus devuelve el estado canónico y si es reconocido.
func NormalizeOrderStatus(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == orderStatusCompleted {
		s = OrderStatusDelivered
	}
	_, ok := orderTransitions[s]
	return s, ok
}

// CanTransition indica si from → to está permitido. Ambos deben ser estados canónicos.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus delivered y cancelled no admiten más transiciones.
func IsTerminalStatus(s string) bool {
	next, ok := orderTransitions[s]
	return ok && len(next) == 0
}

// IsValidPaymentMethod valida el método de pago.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// IsValidPaymentStatus valida el estado de pago.
func IsValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// OrderItem copia inmutable de la línea al momento de crear el pedido (nombre y precio incluidos).
type OrderItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal precio capturado × cantidad.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress dirección de entrega; los tres campos son obligatorios.
type ShippingAddress struct {
	Address string
	City    string
	Phone   string
}

// IsComplete indica si la dirección tiene address, city y phone.
func (a ShippingAddress) IsComplete() bool {
	return strings.TrimSpace(a.Address) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.Phone) != ""
}

// Order pedido de un usuario. TotalAmount se calcula una sola vez al crear y nunca con el precio vivo.
type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	TotalAmount     decimal.Decimal
	Status          string
	ShippingAddress ShippingAddress
	PaymentMethod   string
	PaymentStatus   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ComputeTotal Σ(precio capturado × cantidad).
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// HoldsStock indica si el pedido tiene stock descontado sin devolver.
func (o *Order) HoldsStock() bool {
	return o.Status != OrderStatusCancelled
}

// IsDeletable solo pendientes (se reintegra stock) o cancelados (ya reintegrado).
func (o *Order) IsDeletable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusCancelled
}
