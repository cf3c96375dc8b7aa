package inventory

import (
	"context"

	"github.com/jhoicas/papeleria-api/internal/application/dto"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// RecordFromRequest adapta el request HTTP al caso de uso Record(ctx, RecordInput).
func (uc *LedgerUseCase) RecordFromRequest(ctx context.Context, in dto.CreateInventoryRecordRequest) (*dto.RecordInventoryResponse, error) {
	res, err := uc.Record(ctx, RecordInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		ChangeQty: in.ChangeQty,
		Note:      in.Note,
	})
	if err != nil {
		return nil, err
	}
	return &dto.RecordInventoryResponse{
		Success:  true,
		Data:     ToRecordResponse(res.Record),
		NewStock: res.NewStock,
	}, nil
}

// ToRecordResponse convierte la entidad a su DTO.
func ToRecordResponse(r *entity.InventoryRecord) dto.InventoryRecordResponse {
	return dto.InventoryRecordResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		Type:      r.Type,
		ChangeQty: r.ChangeQty,
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
	}
}
