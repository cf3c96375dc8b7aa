package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/papeleria-api/internal/domain"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

// InventoryRecordRepo implementación de InventoryRecordRepository (kardex manual, usable con pool o tx).
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

const recordColumns = `id, product_id, type, change_qty, note, created_at`

// Create inserta un registro. La CHECK de la tabla rechaza tipos o cantidades inválidas.
func (r *InventoryRecordRepo) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.ProductID, rec.Type, rec.ChangeQty, rec.Note, rec.CreatedAt,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		case isCheckViolation(err):
			return domain.ErrInvalidInput
		case isUniqueViolation(err):
			return domain.ErrConflict
		}
		return fmt.Errorf("insert inventory record: %w", err)
	}
	return nil
}

// GetByID obtiene un registro por ID.
func (r *InventoryRecordRepo) GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := r.q.QueryRow(ctx, `SELECT `+recordColumns+` FROM inventory_records WHERE id = $1`, id).
		Scan(&rec.ID, &rec.ProductID, &rec.Type, &rec.ChangeQty, &rec.Note, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return &rec, nil
}

// List lista registros, más recientes primero.
func (r *InventoryRecordRepo) List(ctx context.Context, limit, offset int) ([]*entity.InventoryRecord, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.q.Query(ctx, `
		SELECT `+recordColumns+` FROM inventory_records
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	return scanRecords(rows)
}

// ListByProduct lista el kardex de un producto, más recientes primero.
func (r *InventoryRecordRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.q.Query(ctx, `
		SELECT `+recordColumns+` FROM inventory_records
		WHERE product_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory records by product: %w", err)
	}
	return scanRecords(rows)
}

// Delete elimina el registro. No toca products.stock.
func (r *InventoryRecordRepo) Delete(ctx context.Context, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM inventory_records WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete inventory record: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func scanRecords(rows pgx.Rows) ([]*entity.InventoryRecord, error) {
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.Type, &rec.ChangeQty, &rec.Note, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
