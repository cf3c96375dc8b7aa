package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/papeleria-api/internal/application/cart"
	"github.com/jhoicas/papeleria-api/internal/application/inventory"
	"github.com/jhoicas/papeleria-api/internal/application/order"
	"github.com/jhoicas/papeleria-api/internal/application/stock"
	"github.com/jhoicas/papeleria-api/pkg/jwt"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC        *stock.StockUseCase
	LedgerUC       *inventory.LedgerUseCase
	CartUC         *cart.CartUseCase
	OrderUC        *order.OrderUseCase
	JWTSecret      string // vacío = kardex público
	JWTIssuer      string
	RequestTimeout time.Duration
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	base := handlerBase{timeout: deps.RequestTimeout, log: deps.Log}
	api := app.Group("/api")

	// Products (solo lectura)
	productHandler := NewProductHandler(deps.StockUC, base)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/stock", productHandler.GetStock)

	// Inventories (kardex); con JWT_SECRET requiere rol admin o bodeguero
	var guards []fiber.Handler
	if deps.JWTSecret != "" {
		guards = append(guards,
			AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
			RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero),
		)
	}
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, base)
	inventories := api.Group("/inventories", guards...)
	inventories.Post("/", inventoryHandler.Create)
	inventories.Get("/", inventoryHandler.List)
	inventories.Get("/product/:productId", inventoryHandler.ListByProduct)
	inventories.Get("/:id", inventoryHandler.GetByID)
	inventories.Delete("/:id", inventoryHandler.Delete)

	// Cart
	cartHandler := NewCartHandler(deps.CartUC, base)
	cartGroup := api.Group("/cart")
	cartGroup.Post("/", cartHandler.Add)
	cartGroup.Get("/", cartHandler.View)
	cartGroup.Delete("/", cartHandler.Clear)
	cartGroup.Put("/:product_id", cartHandler.Update)
	cartGroup.Delete("/:product_id", cartHandler.Remove)

	// Orders
	orderHandler := NewOrderHandler(deps.OrderUC, base)
	orders := api.Group("/orders")
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)
	orders.Patch("/:id/payment", orderHandler.UpdatePayment)
	orders.Delete("/:id", orderHandler.Delete)
}
