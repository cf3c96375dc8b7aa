package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/papeleria-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo consulta la tabla users (administrada por el servicio de usuarios).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Exists indica si el usuario existe.
func (r *CustomerRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check customer: %w", err)
	}
	return exists, nil
}
