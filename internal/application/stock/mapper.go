package stock

import (
	"github.com/jhoicas/papeleria-api/internal/application/dto"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// ToProductResponse convierte la entidad a su DTO.
func ToProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
