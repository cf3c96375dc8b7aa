package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/papeleria-api/internal/application/dto"
	"github.com/jhoicas/papeleria-api/internal/domain"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLookups límite de lecturas de producto en paralelo al poblar el carrito.
const maxConcurrentLookups = 8

// CartUseCase casos de uso del carrito. Valida contra el stock vigente en cada mutación,
// pero no reserva stock: eso ocurre recién al crear el pedido.
type CartUseCase struct {
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
}

// NewCartUseCase construye el caso de uso.
func NewCartUseCase(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) *CartUseCase {
	return &CartUseCase{
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
	}
}

// Add agrega quantity del producto al carrito del usuario, creando el carrito si no existe.
// Si el producto ya está, suma cantidades y valida el total acumulado contra el stock.
func (uc *CartUseCase) Add(ctx context.Context, userID, productID string, quantity int) (*dto.CartResponse, error) {
	if userID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	exists, err := uc.customerRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	c, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if c == nil {
		c = &entity.Cart{ID: uuid.New().String(), UserID: userID, CreatedAt: now}
	}
	merged := c.QuantityOf(productID) + quantity
	if product.Stock < merged {
		return nil, &domain.StockError{ProductID: product.ID, ProductName: product.Name, Available: product.Stock, Requested: merged}
	}
	c.AddItem(productID, quantity)
	c.UpdatedAt = now
	if err := uc.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return uc.populate(ctx, c)
}

// SetQuantity reemplaza la cantidad de un producto que ya está en el carrito.
func (uc *CartUseCase) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*dto.CartResponse, error) {
	if userID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	c, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.QuantityOf(productID) == 0 {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.Stock < quantity {
		return nil, &domain.StockError{ProductID: product.ID, ProductName: product.Name, Available: product.Stock, Requested: quantity}
	}
	c.SetItem(productID, quantity)
	c.UpdatedAt = time.Now().UTC()
	if err := uc.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return uc.populate(ctx, c)
}

// Remove quita el producto del carrito. Si no estaba, devuelve el carrito sin cambios.
func (uc *CartUseCase) Remove(ctx context.Context, userID, productID string) (*dto.CartResponse, error) {
	if userID == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.RemoveItem(productID) {
		c.UpdatedAt = time.Now().UTC()
		if err := uc.cartRepo.Save(ctx, c); err != nil {
			return nil, err
		}
	}
	return uc.populate(ctx, c)
}

// Clear vacía el carrito del usuario.
func (uc *CartUseCase) Clear(ctx context.Context, userID string) (*dto.CartResponse, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	c.Clear()
	c.UpdatedAt = time.Now().UTC()
	if err := uc.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return uc.populate(ctx, c)
}

// View devuelve el carrito poblado; si el usuario no tiene carrito, uno vacío (no es error).
func (uc *CartUseCase) View(ctx context.Context, userID string) (*dto.CartResponse, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &dto.CartResponse{UserID: userID, Items: []dto.CartItemResponse{}, TotalAmount: decimal.Zero}, nil
	}
	return uc.populate(ctx, c)
}

// populate completa cada línea con nombre, precio y stock vigentes del producto.
// Un producto eliminado del catálogo deja la línea sin datos de producto.
func (uc *CartUseCase) populate(ctx context.Context, c *entity.Cart) (*dto.CartResponse, error) {
	products := make([]*entity.Product, len(c.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, it := range c.Items {
		g.Go(func() error {
			p, err := uc.productRepo.GetByID(gctx, it.ProductID)
			if err != nil {
				return err
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.CartResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Items:         make([]dto.CartItemResponse, 0, len(c.Items)),
		TotalQuantity: c.TotalQuantity(),
		TotalAmount:   decimal.Zero,
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		out.UpdatedAt = &updated
	}
	for i, it := range c.Items {
		item := dto.CartItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, Price: decimal.Zero, Subtotal: decimal.Zero}
		if p := products[i]; p != nil {
			item.Name = p.Name
			item.Price = p.Price
			item.Stock = p.Stock
			item.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		out.TotalAmount = out.TotalAmount.Add(item.Subtotal)
		out.Items = append(out.Items, item)
	}
	return out, nil
}
