package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/papeleria-api/internal/application/ports"
	"github.com/jhoicas/papeleria-api/internal/application/stock"
	"github.com/jhoicas/papeleria-api/internal/domain"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentLookups = 8

// OrderUseCase ciclo de vida del pedido: creación con descuento de stock, transiciones de estado
// (la cancelación reintegra) y eliminación.
type OrderUseCase struct {
	txRunner     TxRunner
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	publisher    ports.StockEventPublisher
	log          zerolog.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	publisher ports.StockEventPublisher,
	log zerolog.Logger,
) *OrderUseCase {
	if publisher == nil {
		publisher = ports.NopStockEventPublisher{}
	}
	return &OrderUseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
		log:          log,
	}
}

// LineInput línea solicitada.
type LineInput struct {
	ProductID string
	Quantity  int
}

// CreateInput entrada para crear un pedido.
type CreateInput struct {
	UserID          string
	Items           []LineInput
	ShippingAddress entity.ShippingAddress
	PaymentMethod   string
}

// Create valida todas las líneas contra el stock vigente y, solo si todas pasan, descuenta el stock
// y persiste el pedido (pending, con nombre y precio capturados). Cualquier fallo posterior a la
// validación deshace lo aplicado: no sobrevive ningún descuento parcial.
func (uc *OrderUseCase) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	if in.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	if !in.ShippingAddress.IsComplete() {
		return nil, domain.ErrInvalidShippingAddress
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = entity.PaymentMethodCash
	}
	if !entity.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidPaymentMethod
	}
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}

	exists, err := uc.customerRepo.Exists(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("usuario %s: %w", in.UserID, domain.ErrNotFound)
	}

	products, err := uc.loadProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	o := &entity.Order{
		ID:              uuid.New().String(),
		UserID:          in.UserID,
		Items:           make([]entity.OrderItem, 0, len(lines)),
		Status:          entity.OrderStatusPending,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   entity.PaymentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	reserve := make([]stock.Line, 0, len(lines))
	for i, l := range lines {
		p := products[i]
		if p.Stock < l.Quantity {
			return nil, &domain.StockError{ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: l.Quantity}
		}
		o.Items = append(o.Items, entity.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  l.Quantity,
		})
		reserve = append(reserve, stock.Line{ProductID: p.ID, ProductName: p.Name, Quantity: l.Quantity})
	}
	o.TotalAmount = o.ComputeTotal()

	var applied []stock.Applied
	err = uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) error {
		var err error
		applied, err = stock.ReserveLines(ctx, productRepo, reserve, uc.log)
		if err != nil {
			return err
		}
		// El pedido solo se vuelve visible cuando ya tiene el stock descontado.
		if err := orderRepo.Create(ctx, o); err != nil {
			if cerr := stock.UndoReserve(ctx, productRepo, applied, uc.log); cerr != nil {
				return errors.Join(err, cerr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, o.ID, stock.Events(applied, -1, entity.StockCauseOrderCreated, o.ID))
	return o, nil
}

// TransitionStatus mueve el pedido a newStatus según la tabla de adyacencia.
// Entrar a cancelled reintegra el stock de cada línea exactamente una vez: el cambio de estado es
// un compare-and-set sobre el estado leído, así que dos cancelaciones concurrentes no reintegran dos veces.
func (uc *OrderUseCase) TransitionStatus(ctx context.Context, orderID, newStatus string) (*entity.Order, error) {
	target, ok := entity.NormalizeOrderStatus(newStatus)
	if !ok {
		return nil, domain.ErrInvalidStatus
	}
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}

	var (
		updated  *entity.Order
		released []stock.Applied
	)
	err := uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) error {
		o, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !entity.CanTransition(o.Status, target) {
			return fmt.Errorf("%s → %s: %w", o.Status, target, domain.ErrInvalidTransition)
		}
		from := o.Status
		changed, err := orderRepo.UpdateStatus(ctx, o.ID, from, target)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("el pedido cambió de estado concurrentemente: %w", domain.ErrInvalidTransition)
		}
		if target == entity.OrderStatusCancelled {
			released, err = stock.ReleaseLines(ctx, productRepo, orderLines(o), uc.log)
			if err != nil {
				uc.rollbackCancel(ctx, orderRepo, productRepo, o.ID, from, target, released)
				return err
			}
		}
		o.Status = target
		o.UpdatedAt = time.Now().UTC()
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(released) > 0 {
		uc.publish(ctx, updated.ID, stock.Events(released, 1, entity.StockCauseOrderCancelled, updated.ID))
	}
	return updated, nil
}

// Delete elimina un pedido pending (reintegrando su stock) o cancelled (ya reintegrado, no se repite).
// Cualquier otro estado retorna ErrNotDeletable.
func (uc *OrderUseCase) Delete(ctx context.Context, orderID string) error {
	if orderID == "" {
		return domain.ErrInvalidInput
	}
	var (
		deleted  *entity.Order
		released []stock.Applied
	)
	err := uc.txRunner.RunOrder(ctx, func(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) error {
		o, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.IsDeletable() {
			return domain.ErrNotDeletable
		}
		ok, err := orderRepo.DeleteIfStatus(ctx, o.ID, o.Status)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("el pedido cambió de estado concurrentemente: %w", domain.ErrConflict)
		}
		if o.HoldsStock() {
			released, err = stock.ReleaseLines(ctx, productRepo, orderLines(o), uc.log)
			if err != nil {
				if uerr := stock.UndoRelease(ctx, productRepo, released, uc.log); uerr == nil {
					if cerr := orderRepo.Create(ctx, o); cerr != nil {
						uc.log.Error().Err(cerr).Str("order_id", o.ID).Msg("no se pudo restaurar pedido tras reintegro fallido")
					}
				}
				return err
			}
		}
		deleted = o
		return nil
	})
	if err != nil {
		return err
	}
	if len(released) > 0 {
		uc.publish(ctx, deleted.ID, stock.Events(released, 1, entity.StockCauseOrderDeleted, deleted.ID))
	}
	return nil
}

// Get obtiene un pedido por ID.
func (uc *OrderUseCase) Get(ctx context.Context, orderID string) (*entity.Order, error) {
	o, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// List lista pedidos filtrados, más recientes primero. Retorna el total sin paginar.
func (uc *OrderUseCase) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, int, error) {
	if filter.Status != "" {
		s, ok := entity.NormalizeOrderStatus(filter.Status)
		if !ok {
			return nil, 0, domain.ErrInvalidStatus
		}
		filter.Status = s
	}
	if filter.PaymentStatus != "" && !entity.IsValidPaymentStatus(filter.PaymentStatus) {
		return nil, 0, domain.ErrInvalidPaymentStatus
	}
	return uc.orderRepo.List(ctx, filter)
}

// UpdatePaymentStatus cambia el estado de pago (pending, paid, failed). No afecta el stock.
func (uc *OrderUseCase) UpdatePaymentStatus(ctx context.Context, orderID, paymentStatus string) (*entity.Order, error) {
	paymentStatus = strings.ToLower(strings.TrimSpace(paymentStatus))
	if !entity.IsValidPaymentStatus(paymentStatus) {
		return nil, domain.ErrInvalidPaymentStatus
	}
	ok, err := uc.orderRepo.UpdatePaymentStatus(ctx, orderID, paymentStatus)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return uc.Get(ctx, orderID)
}

// rollbackCancel deshace una cancelación a medias: vuelve a descontar lo reintegrado y restaura el estado.
func (uc *OrderUseCase) rollbackCancel(
	ctx context.Context,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	orderID, from, to string,
	released []stock.Applied,
) {
	if err := stock.UndoRelease(ctx, productRepo, released, uc.log); err != nil {
		return
	}
	if _, err := orderRepo.UpdateStatus(ctx, orderID, to, from); err != nil {
		uc.log.Error().Err(err).Str("order_id", orderID).Msg("no se pudo restaurar estado tras cancelación fallida")
	}
}

// loadProducts lee en paralelo los productos de cada línea (fuera de la unidad de trabajo).
func (uc *OrderUseCase) loadProducts(ctx context.Context, lines []LineInput) ([]*entity.Product, error) {
	products := make([]*entity.Product, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, l := range lines {
		g.Go(func() error {
			p, err := uc.productRepo.GetByID(gctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrNotFound)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

func (uc *OrderUseCase) publish(ctx context.Context, orderID string, events []entity.StockEvent) {
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.log.Warn().Err(err).Str("order_id", orderID).Msg("no se pudo publicar evento de stock")
	}
}

// mergeLines une líneas repetidas del mismo producto conservando el orden de aparición.
func mergeLines(items []LineInput) ([]LineInput, error) {
	index := make(map[string]int, len(items))
	out := make([]LineInput, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if it.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		if i, ok := index[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out, nil
}

func orderLines(o *entity.Order) []stock.Line {
	lines := make([]stock.Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, stock.Line{ProductID: it.ProductID, ProductName: it.Name, Quantity: it.Quantity})
	}
	return lines
}
