package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/papeleria-api/internal/application/order"
	"github.com/jhoicas/papeleria-api/internal/domain"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
	"github.com/jhoicas/papeleria-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	userID   = "u-1"
	cuaderno = "p-cuaderno"
	lapiz    = "p-lapiz"
)

var address = entity.ShippingAddress{Address: "Calle 10 # 5-20", City: "Medellín", Phone: "3001234567"}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.StockEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...entity.StockEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) causes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Cause)
	}
	return out
}

// failingTx entrega un ProductRepository que falla al reintegrar un producto concreto.
type failingTx struct {
	s             *memory.Store
	failIncrement string
}

type failingProducts struct {
	repository.ProductRepository
	failIncrement string
}

var errStorage = errors.New("fallo de almacenamiento")

func (r *failingProducts) IncrementStock(ctx context.Context, id string, qty int) (int, error) {
	if id == r.failIncrement {
		return 0, errStorage
	}
	return r.ProductRepository.IncrementStock(ctx, id, qty)
}

func (t *failingTx) RunOrder(ctx context.Context, fn func(repository.OrderRepository, repository.ProductRepository) error) error {
	return fn(memory.NewOrderRepository(t.s), &failingProducts{ProductRepository: memory.NewProductRepository(t.s), failIncrement: t.failIncrement})
}

type fixture struct {
	uc  *order.OrderUseCase
	s   *memory.Store
	pub *recordingPublisher
}

func newFixture(t *testing.T, stocks map[string]int) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.PutCustomer(&entity.Customer{ID: userID})
	for id, qty := range stocks {
		s.PutProduct(&entity.Product{ID: id, Name: "Producto " + id, Price: decimal.NewFromInt(1500), Stock: qty})
	}
	pub := &recordingPublisher{}
	uc := order.NewOrderUseCase(
		memory.NewTxRunner(s),
		memory.NewOrderRepository(s),
		memory.NewProductRepository(s),
		memory.NewCustomerRepository(s),
		pub,
		zerolog.Nop(),
	)
	return &fixture{uc: uc, s: s, pub: pub}
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := memory.NewProductRepository(f.s).GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) create(t *testing.T, lines ...order.LineInput) *entity.Order {
	t.Helper()
	o, err := f.uc.Create(context.Background(), order.CreateInput{UserID: userID, Items: lines, ShippingAddress: address})
	require.NoError(t, err)
	return o
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_DescuentaStockYCapturaPrecio(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})

	o := f.create(t, order.LineInput{ProductID: cuaderno, Quantity: 3})

	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.Equal(t, entity.PaymentMethodCash, o.PaymentMethod, "cash por defecto")
	assert.Equal(t, entity.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, 7, f.stock(t, cuaderno))
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Producto "+cuaderno, o.Items[0].Name)
	assert.True(t, decimal.NewFromInt(4500).Equal(o.TotalAmount))

	// Cambiar el precio vivo no altera el pedido.
	f.s.PutProduct(&entity.Product{ID: cuaderno, Name: "Cuaderno nuevo", Price: decimal.NewFromInt(9999), Stock: 7})
	got, err := f.uc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4500).Equal(got.TotalAmount))
	assert.True(t, decimal.NewFromInt(1500).Equal(got.Items[0].Price))

	assert.Equal(t, []string{entity.StockCauseOrderCreated}, f.pub.causes())
}

func TestCreate_FusionaLineasRepetidas(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})

	o := f.create(t,
		order.LineInput{ProductID: cuaderno, Quantity: 2},
		order.LineInput{ProductID: cuaderno, Quantity: 1},
	)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, 7, f.stock(t, cuaderno))
}

func TestCreate_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10, lapiz: 1})

	_, err := f.uc.Create(context.Background(), order.CreateInput{
		UserID:          userID,
		ShippingAddress: address,
		Items: []order.LineInput{
			{ProductID: cuaderno, Quantity: 2},
			{ProductID: lapiz, Quantity: 2},
		},
	})

	var se *domain.StockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, lapiz, se.ProductID)
	assert.Equal(t, "Producto "+lapiz, se.ProductName)
	assert.Equal(t, 1, se.Available)

	assert.Equal(t, 10, f.stock(t, cuaderno))
	assert.Equal(t, 1, f.stock(t, lapiz))
	_, total, err := f.uc.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, f.pub.causes())
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})
	ctx := context.Background()
	line := []order.LineInput{{ProductID: cuaderno, Quantity: 1}}

	cases := []struct {
		name string
		in   order.CreateInput
		want error
	}{
		{"sin líneas", order.CreateInput{UserID: userID, ShippingAddress: address}, domain.ErrEmptyOrder},
		{"dirección incompleta", order.CreateInput{UserID: userID, Items: line, ShippingAddress: entity.ShippingAddress{Address: "x"}}, domain.ErrInvalidShippingAddress},
		{"cantidad cero", order.CreateInput{UserID: userID, Items: []order.LineInput{{ProductID: cuaderno}}, ShippingAddress: address}, domain.ErrInvalidQuantity},
		{"método de pago", order.CreateInput{UserID: userID, Items: line, ShippingAddress: address, PaymentMethod: "crypto"}, domain.ErrInvalidPaymentMethod},
		{"usuario desconocido", order.CreateInput{UserID: "u-x", Items: line, ShippingAddress: address}, domain.ErrNotFound},
		{"producto desconocido", order.CreateInput{UserID: userID, Items: []order.LineInput{{ProductID: "p-x", Quantity: 1}}, ShippingAddress: address}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 10, f.stock(t, cuaderno))
}

func TestCreate_ConcurrenteUltimaUnidad(t *testing.T) {
	f := newFixture(t, map[string]int{lapiz: 1})

	const buyers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Create(context.Background(), order.CreateInput{
				UserID: userID, ShippingAddress: address,
				Items: []order.LineInput{{ProductID: lapiz, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactamente un pedido gana la última unidad")
	assert.Equal(t, buyers-1, rejected)
	assert.Equal(t, 0, f.stock(t, lapiz))
	_, total, err := f.uc.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

// ──────────────────────────────────────────────────────────────────────────────
// TransitionStatus
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelar_ReintegraUnaSolaVez(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})
	ctx := context.Background()
	o := f.create(t, order.LineInput{ProductID: cuaderno, Quantity: 3})
	require.Equal(t, 7, f.stock(t, cuaderno))

	got, err := f.uc.TransitionStatus(ctx, o.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, got.Status)
	assert.Equal(t, 10, f.stock(t, cuaderno))

	_, err = f.uc.TransitionStatus(ctx, o.ID, "cancelled")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 10, f.stock(t, cuaderno), "la segunda cancelación no reintegra")

	assert.Equal(t, []string{entity.StockCauseOrderCreated, entity.StockCauseOrderCancelled}, f.pub.causes())
}

func TestCancelar_Concurrente(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})
	o := f.create(t, order.LineInput{ProductID: cuaderno, Quantity: 4})

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.uc.TransitionStatus(context.Background(), o.ID, entity.OrderStatusCancelled)
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 10, f.stock(t, cuaderno))
}

func TestTransition_Adyacencia(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})
	ctx := context.Background()
	o := f.create(t, order.LineInput{ProductID: cuaderno, Quantity: 1})

	_, err := f.uc.TransitionStatus(ctx, o.ID, "delivered")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "pending → delivered no existe")

	_, err = f.uc.TransitionStatus(ctx, o.ID, "lost")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.uc.TransitionStatus(ctx, "o-x", "processing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for _, s := range []string{"processing", "shipped", "completed"} {
		_, err = f.uc.TransitionStatus(ctx, o.ID, s)
		require.NoError(t, err, s)
	}
	got, err := f.uc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, got.Status)
	assert.Equal(t, 9, f.stock(t, cuaderno), "entregar no toca el stock")

	_, err = f.uc.TransitionStatus(ctx, o.ID, "cancelled")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "delivered es terminal")
}

func TestCancelar_FalloAlReintegrarRestauraTodo(t *testing.T) {
	s := memory.NewStore()
	s.PutCustomer(&entity.Customer{ID: userID})
	s.PutProduct(&entity.Product{ID: cuaderno, Name: "Cuaderno", Price: decimal.NewFromInt(1), Stock: 10})
	s.PutProduct(&entity.Product{ID: lapiz, Name: "Lápiz", Price: decimal.NewFromInt(1), Stock: 10})
	products := memory.NewProductRepository(s)
	orders := memory.NewOrderRepository(s)
	customers := memory.NewCustomerRepository(s)

	creator := order.NewOrderUseCase(memory.NewTxRunner(s), orders, products, customers, nil, zerolog.Nop())
	o, err := creator.Create(context.Background(), order.CreateInput{
		UserID: userID, ShippingAddress: address,
		Items: []order.LineInput{{ProductID: cuaderno, Quantity: 2}, {ProductID: lapiz, Quantity: 3}},
	})
	require.NoError(t, err)

	uc := order.NewOrderUseCase(&failingTx{s: s, failIncrement: lapiz}, orders, products, customers, nil, zerolog.Nop())
	_, err = uc.TransitionStatus(context.Background(), o.ID, entity.OrderStatusCancelled)
	assert.ErrorIs(t, err, errStorage)

	got, err := uc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, got.Status, "el estado vuelve a pending")
	p, _ := products.GetByID(context.Background(), cuaderno)
	assert.Equal(t, 8, p.Stock, "lo reintegrado se vuelve a descontar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_PendienteReintegra(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})
	o := f.create(t, order.LineInput{ProductID: cuaderno, Quantity: 3})

	require.NoError(t, f.uc.Delete(context.Background(), o.ID))
	assert.Equal(t, 10, f.stock(t, cuaderno))

	_, err := f.uc.Get(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.uc.Delete(context.Background(), o.ID), domain.ErrNotFound)
}

func TestDelete_CanceladoNoReintegraDeNuevo(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})
	o := f.create(t, order.LineInput{ProductID: cuaderno, Quantity: 3})
	_, err := f.uc.TransitionStatus(context.Background(), o.ID, "cancelled")
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(context.Background(), o.ID))
	assert.Equal(t, 10, f.stock(t, cuaderno))
}

func TestDelete_EnviadoNoSePuedeEliminar(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})
	o := f.create(t, order.LineInput{ProductID: cuaderno, Quantity: 3})
	_, err := f.uc.TransitionStatus(context.Background(), o.ID, "shipped")
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.Delete(context.Background(), o.ID), domain.ErrNotDeletable)
	assert.Equal(t, 7, f.stock(t, cuaderno))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y pago
// ──────────────────────────────────────────────────────────────────────────────

func TestListYPago(t *testing.T) {
	f := newFixture(t, map[string]int{cuaderno: 10})
	ctx := context.Background()
	a := f.create(t, order.LineInput{ProductID: cuaderno, Quantity: 1})
	f.create(t, order.LineInput{ProductID: cuaderno, Quantity: 1})

	_, err := f.uc.UpdatePaymentStatus(ctx, a.ID, "refunded")
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus)
	_, err = f.uc.UpdatePaymentStatus(ctx, "o-x", "paid")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.uc.UpdatePaymentStatus(ctx, a.ID, "PAID")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, got.PaymentStatus)

	list, total, err := f.uc.List(ctx, repository.OrderFilter{PaymentStatus: entity.PaymentStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, total, err = f.uc.List(ctx, repository.OrderFilter{Status: "pending", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, err = f.uc.List(ctx, repository.OrderFilter{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

// ──────────────────────────────────────────────────────────────────────────────
// Visibilidad del pedido durante la reserva
// ──────────────────────────────────────────────────────────────────────────────

// hookedTx ejecuta onReserve una sola vez, justo después del primer descuento de stock.
type hookedTx struct {
	s         *memory.Store
	once      sync.Once
	onReserve func()
	failSave  bool
}

type hookedProducts struct {
	repository.ProductRepository
	tx *hookedTx
}

func (r *hookedProducts) DecrementStock(ctx context.Context, id string, qty int) (int, error) {
	n, err := r.ProductRepository.DecrementStock(ctx, id, qty)
	if err == nil && r.tx.onReserve != nil {
		r.tx.once.Do(r.tx.onReserve)
	}
	return n, err
}

type unsavableOrders struct{ repository.OrderRepository }

func (unsavableOrders) Create(context.Context, *entity.Order) error { return errStorage }

func (t *hookedTx) RunOrder(ctx context.Context, fn func(repository.OrderRepository, repository.ProductRepository) error) error {
	var orders repository.OrderRepository = memory.NewOrderRepository(t.s)
	if t.failSave {
		orders = unsavableOrders{orders}
	}
	return fn(orders, &hookedProducts{ProductRepository: memory.NewProductRepository(t.s), tx: t})
}

func TestCreate_PedidoInvisibleHastaTenerStock(t *testing.T) {
	s := memory.NewStore()
	s.PutCustomer(&entity.Customer{ID: userID})
	s.PutCustomer(&entity.Customer{ID: "u-2"})
	s.PutProduct(&entity.Product{ID: lapiz, Name: "Lápiz", Price: decimal.NewFromInt(900), Stock: 3})
	products := memory.NewProductRepository(s)
	orders := memory.NewOrderRepository(s)
	customers := memory.NewCustomerRepository(s)

	tx := &hookedTx{s: s}
	uc := order.NewOrderUseCase(tx, orders, products, customers, nil, zerolog.Nop())
	other := order.NewOrderUseCase(memory.NewTxRunner(s), orders, products, customers, nil, zerolog.Nop())

	var visibleDuringReserve int
	tx.onReserve = func() {
		// Otro actor intenta cancelar lo que vea y comprar lo que quede.
		list, total, err := other.List(context.Background(), repository.OrderFilter{})
		require.NoError(t, err)
		visibleDuringReserve = total
		for _, o := range list {
			_, _ = other.TransitionStatus(context.Background(), o.ID, entity.OrderStatusCancelled)
		}
		_, err = other.Create(context.Background(), order.CreateInput{
			UserID: "u-2", ShippingAddress: address,
			Items: []order.LineInput{{ProductID: lapiz, Quantity: 1}},
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}

	a, err := uc.Create(context.Background(), order.CreateInput{
		UserID: userID, ShippingAddress: address,
		Items: []order.LineInput{{ProductID: lapiz, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Zero(t, visibleDuringReserve, "el pedido no es visible antes de tener stock")

	// Conservación: stock disponible + unidades retenidas por pedidos vivos = stock inicial.
	list, _, err := other.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	held := 0
	for _, o := range list {
		if o.HoldsStock() {
			for _, it := range o.Items {
				held += it.Quantity
			}
		}
	}
	p, err := products.GetByID(context.Background(), lapiz)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock+held)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, entity.OrderStatusPending, list[0].Status)
}

func TestCreate_FalloAlGuardarDevuelveStock(t *testing.T) {
	s := memory.NewStore()
	s.PutCustomer(&entity.Customer{ID: userID})
	s.PutProduct(&entity.Product{ID: cuaderno, Name: "Cuaderno", Price: decimal.NewFromInt(4500), Stock: 10})
	s.PutProduct(&entity.Product{ID: lapiz, Name: "Lápiz", Price: decimal.NewFromInt(900), Stock: 10})
	products := memory.NewProductRepository(s)
	orders := memory.NewOrderRepository(s)
	pub := &recordingPublisher{}

	uc := order.NewOrderUseCase(&hookedTx{s: s, failSave: true}, orders, products, memory.NewCustomerRepository(s), pub, zerolog.Nop())
	_, err := uc.Create(context.Background(), order.CreateInput{
		UserID: userID, ShippingAddress: address,
		Items: []order.LineInput{{ProductID: cuaderno, Quantity: 4}, {ProductID: lapiz, Quantity: 2}},
	})
	assert.ErrorIs(t, err, errStorage)

	for _, id := range []string{cuaderno, lapiz} {
		p, err := products.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 10, p.Stock, id)
	}
	_, total, err := orders.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, pub.causes())
}
