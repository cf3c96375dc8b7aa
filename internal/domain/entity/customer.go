package entity

import "time"

// Customer representa al usuario dueño de un carrito o pedido.
// El CRUD de usuarios vive fuera de este servicio; aquí solo se consulta su existencia.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}
