package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/papeleria-api/internal/application/inventory"
	"github.com/jhoicas/papeleria-api/internal/application/order"
	"github.com/jhoicas/papeleria-api/internal/domain"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository         = (*ProductRepo)(nil)
	_ repository.CustomerRepository        = (*CustomerRepo)(nil)
	_ repository.CartRepository            = (*CartRepo)(nil)
	_ repository.OrderRepository           = (*OrderRepo)(nil)
	_ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)
	_ inventory.TxRunner                   = (*TxRunner)(nil)
	_ order.TxRunner                       = (*TxRunner)(nil)
)

// Store almacenamiento en memoria para desarrollo local y tests.
// Cada operación es atómica bajo el mutex; no hay transacciones multi-clave,
// por lo que los casos de uso dependen de su propia compensación.
type Store struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	customers map[string]*entity.Customer
	carts     map[string]*entity.Cart // por UserID
	orders    map[string]*entity.Order
	records   map[string]*entity.InventoryRecord
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		customers: make(map[string]*entity.Customer),
		carts:     make(map[string]*entity.Cart),
		orders:    make(map[string]*entity.Order),
		records:   make(map[string]*entity.InventoryRecord),
	}
}

// PutProduct inserta o reemplaza un producto (seed y tests).
func (s *Store) PutProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	if cp.Status == "" {
		cp.Status = entity.ProductStatusActive
	}
	s.products[p.ID] = &cp
}

// PutCustomer inserta o reemplaza un cliente (seed y tests).
func (s *Store) PutCustomer(c *entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.customers[c.ID] = &cp
}

// DeleteProduct elimina un producto del catálogo (tests de productos retirados).
func (s *Store) DeleteProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el adaptador.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

// DecrementStock compara y resta bajo el mutex: nunca deja stock negativo.
func (r *ProductRepo) DecrementStock(_ context.Context, id string, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if p.Stock < qty {
		return 0, domain.ErrInsufficientStock
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	return p.Stock, nil
}

func (r *ProductRepo) IncrementStock(_ context.Context, id string, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.Stock += qty
	p.UpdatedAt = time.Now().UTC()
	return p.Stock, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

// CustomerRepo implementación en memoria de CustomerRepository.
type CustomerRepo struct{ s *Store }

// NewCustomerRepository construye el adaptador.
func NewCustomerRepository(s *Store) *CustomerRepo { return &CustomerRepo{s: s} }

func (r *CustomerRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.customers[id]
	return ok, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Carritos
// ──────────────────────────────────────────────────────────────────────────────

// CartRepo implementación en memoria de CartRepository.
type CartRepo struct{ s *Store }

// NewCartRepository construye el adaptador.
func NewCartRepository(s *Store) *CartRepo { return &CartRepo{s: s} }

func (r *CartRepo) GetByUserID(_ context.Context, userID string) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[userID]
	if !ok {
		return nil, nil
	}
	return copyCart(c), nil
}

func (r *CartRepo) Save(_ context.Context, c *entity.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.carts[c.UserID] = copyCart(c)
	return nil
}

func copyCart(c *entity.Cart) *entity.Cart {
	cp := *c
	cp.Items = append([]entity.CartItem{}, c.Items...)
	return &cp
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos
// ──────────────────────────────────────────────────────────────────────────────

// OrderRepo implementación en memoria de OrderRepository.
type OrderRepo struct{ s *Store }

// NewOrderRepository construye el adaptador.
func NewOrderRepository(s *Store) *OrderRepo { return &OrderRepo{s: s} }

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; ok {
		return domain.ErrConflict
	}
	r.s.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

// GetForUpdate sin bloqueo de fila en memoria; UpdateStatus/DeleteIfStatus hacen el compare-and-set.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.Order, 0)
	for _, o := range r.s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		list = append(list, copyOrder(o))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, f.Limit, f.Offset), len(list), nil
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id, from, to string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *OrderRepo) UpdatePaymentStatus(_ context.Context, id, paymentStatus string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return false, nil
	}
	o.PaymentStatus = paymentStatus
	o.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *OrderRepo) DeleteIfStatus(_ context.Context, id, status string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.Status != status {
		return false, nil
	}
	delete(r.s.orders, id)
	return true, nil
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = append([]entity.OrderItem{}, o.Items...)
	return &cp
}

// ──────────────────────────────────────────────────────────────────────────────
// Kardex
// ──────────────────────────────────────────────────────────────────────────────

// InventoryRecordRepo implementación en memoria de InventoryRecordRepository.
type InventoryRecordRepo struct{ s *Store }

// NewInventoryRecordRepository construye el adaptador.
func NewInventoryRecordRepository(s *Store) *InventoryRecordRepo { return &InventoryRecordRepo{s: s} }

func (r *InventoryRecordRepo) Create(_ context.Context, rec *entity.InventoryRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[rec.ID]; ok {
		return domain.ErrConflict
	}
	cp := *rec
	r.s.records[rec.ID] = &cp
	return nil
}

func (r *InventoryRecordRepo) GetByID(_ context.Context, id string) (*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *InventoryRecordRepo) List(ctx context.Context, limit, offset int) ([]*entity.InventoryRecord, error) {
	return r.ListByProduct(ctx, "", limit, offset)
}

// ListByProduct con productID vacío lista todos.
func (r *InventoryRecordRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.InventoryRecord, 0)
	for _, rec := range r.s.records {
		if productID != "" && rec.ProductID != productID {
			continue
		}
		cp := *rec
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r *InventoryRecordRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[id]; !ok {
		return false, nil
	}
	delete(r.s.records, id)
	return true, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Unidad de trabajo
// ──────────────────────────────────────────────────────────────────────────────

// TxRunner pasa los repositorios del Store sin aislamiento; la atomicidad la aporta la compensación
// de los casos de uso.
type TxRunner struct{ s *Store }

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{s: s} }

func (t *TxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.InventoryRecordRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(NewInventoryRecordRepository(t.s), NewProductRepository(t.s))
}

func (t *TxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(NewOrderRepository(t.s), NewProductRepository(t.s))
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
