package order

import (
	"context"

	"github.com/jhoicas/papeleria-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad de trabajo con los repos de pedidos y productos.
// El caso de uso compensa explícitamente cada paso, de modo que la atomicidad no depende
// de que el motor soporte transacciones multi-clave.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
	) error) error
}
