package repository

import "context"

// CustomerRepository puerto mínimo hacia el servicio de usuarios: solo verificar existencia.
type CustomerRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}
