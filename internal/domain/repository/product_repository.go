package repository

import (
	"context"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product y su contador de stock (DIP).
// El CRUD del catálogo es externo; aquí solo se lee el producto y se muta Stock de forma atómica.
type ProductRepository interface {
	// GetByID retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// DecrementStock resta qty solo si stock >= qty, en un único paso.
	// Retorna domain.ErrNotFound si el producto no existe o domain.ErrInsufficientStock si no alcanza.
	DecrementStock(ctx context.Context, id string, qty int) (newStock int, err error)
	// IncrementStock suma qty. Retorna domain.ErrNotFound si el producto no existe.
	IncrementStock(ctx context.Context, id string, qty int) (newStock int, err error)
}
