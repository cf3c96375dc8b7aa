package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
)

var _ repository.CartRepository = (*CartRepo)(nil)

// Beginner Querier que además puede abrir transacciones (pool o tx con savepoints).
type Beginner interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CartRepo implementación de CartRepository sobre carts + cart_items.
// carts.user_id es UNIQUE: un carrito por usuario.
type CartRepo struct {
	db Beginner
}

// NewCartRepository construye el adaptador.
func NewCartRepository(db Beginner) *CartRepo {
	return &CartRepo{db: db}
}

// GetByUserID obtiene el carrito del usuario con sus líneas.
func (r *CartRepo) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	var c entity.Cart
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	rows, err := r.db.Query(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY position`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()
	c.Items = []entity.CartItem{}
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

// Save hace upsert del carrito y reemplaza sus líneas en una transacción.
func (r *CartRepo) Save(ctx context.Context, c *entity.Cart) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var cartID string
		err := tx.QueryRow(ctx, `
			INSERT INTO carts (id, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
			RETURNING id`,
			c.ID, c.UserID, c.CreatedAt, c.UpdatedAt,
		).Scan(&cartID)
		if err != nil {
			return fmt.Errorf("upsert cart: %w", err)
		}
		c.ID = cartID
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
			return fmt.Errorf("clear cart items: %w", err)
		}
		if len(c.Items) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for i, it := range c.Items {
			batch.Queue(`INSERT INTO cart_items (cart_id, product_id, quantity, position) VALUES ($1, $2, $3, $4)`,
				cartID, it.ProductID, it.Quantity, i)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("insert cart items: producto inexistente: %w", err)
			}
			return fmt.Errorf("insert cart items: %w", err)
		}
		return nil
	})
}
