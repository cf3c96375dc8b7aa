package order

import (
	"github.com/jhoicas/papeleria-api/internal/application/dto"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// FromCreateRequest adapta el body HTTP a CreateInput. Price/Name del cliente se descartan.
func FromCreateRequest(in dto.CreateOrderRequest) CreateInput {
	items := make([]LineInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, LineInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return CreateInput{
		UserID: in.UserID,
		Items:  items,
		ShippingAddress: entity.ShippingAddress{
			Address: in.ShippingAddress.Address,
			City:    in.ShippingAddress.City,
			Phone:   in.ShippingAddress.Phone,
		},
		PaymentMethod: in.PaymentMethod,
	}
}

// ToOrderResponse convierte la entidad a su DTO.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}
	return dto.OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		ShippingAddress: dto.ShippingAddressDTO{
			Address: o.ShippingAddress.Address,
			City:    o.ShippingAddress.City,
			Phone:   o.ShippingAddress.Phone,
		},
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToOrderListResponse arma la página de pedidos.
func ToOrderListResponse(list []*entity.Order, total, limit, offset int) dto.OrderListResponse {
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, ToOrderResponse(o))
	}
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return dto.OrderListResponse{Items: items, Total: total, Page: page, Limit: limit, TotalPages: pages}
}
