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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, price, stock, status, created_at, updated_at`

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// List lista productos por nombre con paginación.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// DecrementStock resta qty en una sola sentencia condicional (sin lectura previa).
// Si no se actualiza ninguna fila, distingue entre producto inexistente y stock insuficiente.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, qty int) (int, error) {
	var newStock int
	err := r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`, id, qty).Scan(&newStock)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if isCheckViolation(err) {
			return 0, domain.ErrInsufficientStock
		}
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrInsufficientStock
}

// IncrementStock suma qty y retorna el stock resultante.
func (r *ProductRepo) IncrementStock(ctx context.Context, id string, qty int) (int, error) {
	var newStock int
	err := r.q.QueryRow(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock`, id, qty).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("increment stock: %w", err)
	}
	return newStock, nil
}
