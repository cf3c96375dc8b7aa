package repository

import (
	"context"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// CartRepository define el puerto de persistencia del carrito (uno por usuario).
type CartRepository interface {
	// GetByUserID retorna (nil, nil) si el usuario aún no tiene carrito.
	GetByUserID(ctx context.Context, userID string) (*entity.Cart, error)
	// Save crea o reemplaza el carrito completo del usuario.
	Save(ctx context.Context, cart *entity.Cart) error
}
