package inventory

import (
	"context"

	"github.com/jhoicas/papeleria-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad de trabajo, pasando repositorios atados a ella.
// En PostgreSQL es una transacción real; en motores sin transacciones el caso de uso compensa.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		recordRepo repository.InventoryRecordRepository,
		productRepo repository.ProductRepository,
	) error) error
}
