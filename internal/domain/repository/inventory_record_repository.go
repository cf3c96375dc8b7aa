package repository

import (
	"context"

	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// InventoryRecordRepository define el puerto de persistencia del kardex manual (append-only).
type InventoryRecordRepository interface {
	Create(ctx context.Context, record *entity.InventoryRecord) error
	GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error)
	List(ctx context.Context, limit, offset int) ([]*entity.InventoryRecord, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryRecord, error)
	// Delete retorna false si no existía. No toca el stock.
	Delete(ctx context.Context, id string) (bool, error)
}
