package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/papeleria-api/internal/domain"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// Line cantidad a descontar o reintegrar de un producto.
type Line struct {
	ProductID   string
	ProductName string
	Quantity    int
}

// Applied mutación ya aplicada sobre el contador de un producto.
type Applied struct {
	Line
	NewStock int
}

// StockUseCase consultas de producto y stock. Las mutaciones ocurren dentro de las unidades de trabajo
// de pedidos y kardex mediante las funciones del paquete.
type StockUseCase struct {
	productRepo repository.ProductRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(productRepo repository.ProductRepository) *StockUseCase {
	return &StockUseCase{productRepo: productRepo}
}

// Get obtiene el producto con su stock actual.
func (uc *StockUseCase) Get(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// List lista productos con su stock.
func (uc *StockUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return uc.productRepo.List(ctx, limit, offset)
}

// Decrement valida qty y delega al decremento condicional del repositorio.
func Decrement(ctx context.Context, repo repository.ProductRepository, productID string, qty int) (int, error) {
	if qty < 1 {
		return 0, domain.ErrInvalidQuantity
	}
	return repo.DecrementStock(ctx, productID, qty)
}

// Increment valida qty y delega al repositorio.
func Increment(ctx context.Context, repo repository.ProductRepository, productID string, qty int) (int, error) {
	if qty < 1 {
		return 0, domain.ErrInvalidQuantity
	}
	return repo.IncrementStock(ctx, productID, qty)
}

// ReserveLines descuenta todas las líneas o ninguna.
// Las líneas se procesan ordenadas por producto para que dos pedidos concurrentes bloqueen filas en el mismo orden.
// Si una línea falla, reintegra las ya aplicadas antes de retornar el error.
func ReserveLines(ctx context.Context, repo repository.ProductRepository, lines []Line, log zerolog.Logger) ([]Applied, error) {
	sorted := sortedLines(lines)
	applied := make([]Applied, 0, len(sorted))
	for _, l := range sorted {
		newStock, err := Decrement(ctx, repo, l.ProductID, l.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				err = insufficient(ctx, repo, l)
			}
			if cerr := compensate(ctx, repo, applied, log); cerr != nil {
				return nil, errors.Join(err, cerr)
			}
			return nil, err
		}
		applied = append(applied, Applied{Line: l, NewStock: newStock})
	}
	return applied, nil
}

// ReleaseLines reintegra cada línea. Un producto que ya no existe se omite (no hay stock que devolver);
// cualquier otro error corta el proceso y se retorna junto con lo ya reintegrado.
func ReleaseLines(ctx context.Context, repo repository.ProductRepository, lines []Line, log zerolog.Logger) ([]Applied, error) {
	sorted := sortedLines(lines)
	released := make([]Applied, 0, len(sorted))
	for _, l := range sorted {
		newStock, err := Increment(ctx, repo, l.ProductID, l.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				log.Warn().Str("product_id", l.ProductID).Int("qty", l.Quantity).Msg("reintegro omitido: producto inexistente")
				continue
			}
			return released, fmt.Errorf("reintegrar stock %s: %w", l.ProductID, err)
		}
		released = append(released, Applied{Line: l, NewStock: newStock})
	}
	return released, nil
}

// UndoReserve reintegra lo descontado por ReserveLines cuando el paso siguiente de la unidad de trabajo falla.
func UndoReserve(ctx context.Context, repo repository.ProductRepository, applied []Applied, log zerolog.Logger) error {
	return compensate(ctx, repo, applied, log)
}

// UndoRelease vuelve a descontar lo reintegrado por ReleaseLines (compensación de una cancelación fallida).
func UndoRelease(ctx context.Context, repo repository.ProductRepository, released []Applied, log zerolog.Logger) error {
	var errs []error
	for _, a := range released {
		if _, err := repo.DecrementStock(ctx, a.ProductID, a.Quantity); err != nil {
			log.Error().Err(err).Str("product_id", a.ProductID).Int("qty", a.Quantity).Msg("compensación de reintegro fallida")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Events convierte mutaciones aplicadas en eventos con la causa y referencia dadas.
func Events(applied []Applied, sign int, cause, reference string) []entity.StockEvent {
	out := make([]entity.StockEvent, 0, len(applied))
	for _, a := range applied {
		out = append(out, Event(a.ProductID, sign*a.Quantity, a.NewStock, cause, reference))
	}
	return out
}

// Event construye un StockEvent con la hora actual.
func Event(productID string, delta, newStock int, cause, reference string) entity.StockEvent {
	return entity.StockEvent{
		ProductID:  productID,
		Delta:      delta,
		NewStock:   newStock,
		Cause:      cause,
		Reference:  reference,
		OccurredAt: time.Now().UTC(),
	}
}

func compensate(ctx context.Context, repo repository.ProductRepository, applied []Applied, log zerolog.Logger) error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		a := applied[i]
		if _, err := repo.IncrementStock(ctx, a.ProductID, a.Quantity); err != nil {
			log.Error().Err(err).Str("product_id", a.ProductID).Int("qty", a.Quantity).Msg("compensación de stock fallida")
			errs = append(errs, fmt.Errorf("compensar %s: %w", a.ProductID, err))
		}
	}
	return errors.Join(errs...)
}

// sortedLines copia las líneas ordenadas por producto: reservar y reintegrar bloquean filas en el mismo orden.
func sortedLines(lines []Line) []Line {
	sorted := make([]Line, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })
	return sorted
}

// insufficient construye un StockError con el stock observado tras el fallo.
func insufficient(ctx context.Context, repo repository.ProductRepository, l Line) error {
	se := &domain.StockError{ProductID: l.ProductID, ProductName: l.ProductName, Requested: l.Quantity}
	if p, err := repo.GetByID(ctx, l.ProductID); err == nil && p != nil {
		se.Available = p.Stock
		if se.ProductName == "" {
			se.ProductName = p.Name
		}
	}
	return se
}
