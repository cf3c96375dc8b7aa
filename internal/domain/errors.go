package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidQuantity        = errors.New("la cantidad debe ser mayor que 0")
	ErrInvalidChangeQty       = errors.New("la cantidad del movimiento debe ser mayor que 0")
	ErrInvalidRecordType      = errors.New("tipo de movimiento inválido (import/export)")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStatus          = errors.New("estado no válido")
	ErrInvalidTransition      = errors.New("transición de estado no permitida")
	ErrNotDeletable           = errors.New("solo se pueden eliminar pedidos pendientes o cancelados")
	ErrEmptyOrder             = errors.New("el pedido no tiene productos")
	ErrInvalidShippingAddress = errors.New("dirección de envío incompleta")
	ErrInvalidPaymentMethod   = errors.New("método de pago no válido")
	ErrInvalidPaymentStatus   = errors.New("estado de pago no válido")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
)

// StockError detalla un ErrInsufficientStock con el producto y las unidades disponibles.
type StockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", name, e.Requested, e.Available)
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *StockError) Unwrap() error { return ErrInsufficientStock }
