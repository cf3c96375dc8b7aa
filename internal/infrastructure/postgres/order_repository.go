package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/papeleria-api/internal/domain"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre orders + order_items (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, user_id, total_amount, status, ship_address, ship_city, ship_phone,
	payment_method, payment_status, created_at, updated_at`

// Create persiste cabecera y líneas. Debe llamarse dentro de la transacción del caso de uso.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.UserID, o.TotalAmount, o.Status,
		o.ShippingAddress.Address, o.ShippingAddress.City, o.ShippingAddress.Phone,
		o.PaymentMethod, o.PaymentStatus, o.CreatedAt, o.UpdatedAt,
	)
	for i, it := range o.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, name, price, quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, it.ProductID, it.Name, it.Price, it.Quantity, i,
		)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido con sus líneas.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate obtiene el pedido y bloquea la fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepo) get(ctx context.Context, query, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// List lista pedidos filtrados, más recientes primero, y el total sin paginar.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	where := []string{"1=1"}
	var args []any
	pos := 1
	if f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", pos))
		args = append(args, f.Status)
		pos++
	}
	if f.PaymentStatus != "" {
		where = append(where, fmt.Sprintf("payment_status = $%d", pos))
		args = append(args, f.PaymentStatus)
		pos++
	}
	if f.UserID != "" {
		where = append(where, fmt.Sprintf("user_id = $%d", pos))
		args = append(args, f.UserID)
		pos++
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	limit, offset := clampPage(f.Limit, f.Offset)
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + cond +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateStatus compare-and-set del estado.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id, from, to string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// UpdatePaymentStatus actualiza el estado de pago.
func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = now() WHERE id = $1`, id, paymentStatus)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// DeleteIfStatus elimina el pedido (y sus líneas por ON DELETE CASCADE) si el estado coincide.
func (r *OrderRepo) DeleteIfStatus(ctx context.Context, id, status string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1 AND status = $2`, id, status)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.Items = []entity.OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT order_id, product_id, name, price, quantity
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var orderID string
		var it entity.OrderItem
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.Status,
		&o.ShippingAddress.Address, &o.ShippingAddress.City, &o.ShippingAddress.Phone,
		&o.PaymentMethod, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
