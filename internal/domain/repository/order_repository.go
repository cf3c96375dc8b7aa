package repository

import (
	"context"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// OrderFilter filtros para listar pedidos.
type OrderFilter struct {
	Status        string
	PaymentStatus string
	UserID        string
	Limit         int
	Offset        int
}

// OrderRepository define el puerto de persistencia para Order.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	// GetByID retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate igual que GetByID pero bloquea la fila dentro de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int, error)
	// UpdateStatus cambia el estado solo si el actual es fromStatus (compare-and-set).
	// Retorna false si otro proceso cambió el estado antes.
	UpdateStatus(ctx context.Context, id, fromStatus, toStatus string) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) (bool, error)
	// DeleteIfStatus elimina el pedido solo si su estado sigue siendo status.
	DeleteIfStatus(ctx context.Context, id, status string) (bool, error)
}
