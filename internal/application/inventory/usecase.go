package inventory

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
)

// LedgerUseCase registra entradas/salidas manuales (kardex) y las aplica al stock como una sola unidad.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	recordRepo  repository.InventoryRecordRepository
	publisher   ports.StockEventPublisher
	log         zerolog.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	recordRepo repository.InventoryRecordRepository,
	publisher ports.StockEventPublisher,
	log zerolog.Logger,
) *LedgerUseCase {
	if publisher == nil {
		publisher = ports.NopStockEventPublisher{}
	}
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		recordRepo:  recordRepo,
		publisher:   publisher,
		log:         log,
	}
}

// RecordInput entrada para registrar un movimiento de kardex.
type RecordInput struct {
	ProductID string
	Type      string
	ChangeQty int
	Note      string
}

// RecordResult registro creado y stock resultante.
type RecordResult struct {
	Record   *entity.InventoryRecord
	NewStock int
}

// Record valida, muta el stock y persiste el registro dentro de la misma unidad de trabajo.
// El stock se mueve primero; si el registro no se puede guardar, el movimiento se revierte.
func (uc *LedgerUseCase) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.IsValidRecordType(in.Type) {
		return nil, domain.ErrInvalidRecordType
	}
	if in.ChangeQty <= 0 {
		return nil, domain.ErrInvalidChangeQty
	}

	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Type == entity.RecordTypeExport && product.Stock < in.ChangeQty {
		return nil, &domain.StockError{ProductID: product.ID, ProductName: product.Name, Available: product.Stock, Requested: in.ChangeQty}
	}

	record := &entity.InventoryRecord{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		Type:      in.Type,
		ChangeQty: in.ChangeQty,
		Note:      strings.TrimSpace(in.Note),
		CreatedAt: time.Now().UTC(),
	}

	var newStock int
	err = uc.txRunner.Run(ctx, func(
		recordRepo repository.InventoryRecordRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		if in.Type == entity.RecordTypeImport {
			newStock, err = stock.Increment(ctx, productRepo, in.ProductID, in.ChangeQty)
		} else {
			newStock, err = stock.Decrement(ctx, productRepo, in.ProductID, in.ChangeQty)
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			// Otro proceso consumió el stock entre la validación y la mutación.
			se := &domain.StockError{ProductID: product.ID, ProductName: product.Name, Requested: in.ChangeQty}
			if current, _ := productRepo.GetByID(ctx, in.ProductID); current != nil {
				se.Available = current.Stock
			}
			return se
		}
		if err != nil {
			return err
		}
		// El registro solo existe si el stock ya se movió; si no se puede guardar, se revierte el movimiento.
		if err := recordRepo.Create(ctx, record); err != nil {
			if rerr := uc.revert(ctx, productRepo, record); rerr != nil {
				return errors.Join(err, rerr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cause := entity.StockCauseLedgerImport
	if in.Type == entity.RecordTypeExport {
		cause = entity.StockCauseLedgerExport
	}
	if perr := uc.publisher.Publish(ctx, stock.Event(record.ProductID, record.Delta(), newStock, cause, record.ID)); perr != nil {
		uc.log.Warn().Err(perr).Str("record_id", record.ID).Msg("no se pudo publicar evento de stock")
	}
	return &RecordResult{Record: record, NewStock: newStock}, nil
}

// revert deshace la mutación de stock de un registro que no se pudo persistir.
func (uc *LedgerUseCase) revert(ctx context.Context, productRepo repository.ProductRepository, record *entity.InventoryRecord) error {
	var err error
	if record.Type == entity.RecordTypeImport {
		_, err = stock.Decrement(ctx, productRepo, record.ProductID, record.ChangeQty)
	} else {
		_, err = stock.Increment(ctx, productRepo, record.ProductID, record.ChangeQty)
	}
	if err != nil {
		uc.log.Error().Err(err).Str("record_id", record.ID).Str("product_id", record.ProductID).Msg("no se pudo revertir movimiento de kardex")
		return fmt.Errorf("revertir movimiento %s: %w", record.ID, err)
	}
	return nil
}

// DeleteRecord elimina solo el registro. El stock NO se revierte: es limpieza de auditoría.
func (uc *LedgerUseCase) DeleteRecord(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	ok, err := uc.recordRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("eliminar registro de kardex: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene un registro.
func (uc *LedgerUseCase) GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	r, err := uc.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// List lista registros, más recientes primero.
func (uc *LedgerUseCase) List(ctx context.Context, limit, offset int) ([]*entity.InventoryRecord, error) {
	return uc.recordRepo.List(ctx, limit, offset)
}

// ListByProduct lista registros de un producto, más recientes primero. ErrNotFound si el producto no existe.
func (uc *LedgerUseCase) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return uc.recordRepo.ListByProduct(ctx, productID, limit, offset)
}
