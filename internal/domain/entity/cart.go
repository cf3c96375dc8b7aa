package entity

import "time"

// CartItem línea del carrito: un producto y su cantidad (>= 1).
type CartItem struct {
	ProductID string
	Quantity  int
}

// Cart carrito de compras. Existe uno por usuario y nunca tiene dos líneas del mismo producto.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuantityOf devuelve la cantidad del producto en el carrito (0 si no está).
func (c *Cart) QuantityOf(productID string) int {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

// AddItem suma quantity a la línea existente o agrega una nueva línea.
func (c *Cart) AddItem(productID string, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity})
}

// SetItem reemplaza la cantidad de una línea existente. Retorna false si el producto no está.
func (c *Cart) SetItem(productID string, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// RemoveItem quita la línea del producto. Retorna false si no estaba.
func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear vacía el carrito.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// TotalQuantity suma las cantidades de todas las líneas.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}
