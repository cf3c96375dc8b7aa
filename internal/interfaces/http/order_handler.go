package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/papeleria-api/internal/application/dto"
	"github.com/jhoicas/papeleria-api/internal/application/order"
	"github.com/jhoicas/papeleria-api/internal/domain/repository"
)

// OrderHandler maneja pedidos: alta, consulta, cambios de estado y eliminación.
type OrderHandler struct {
	handlerBase
	uc *order.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.OrderUseCase, base handlerBase) *OrderHandler {
	return &OrderHandler{handlerBase: base, uc: uc}
}

// orderListQuery filtros de GET /api/orders.
type orderListQuery struct {
	Status        string `query:"status"`
	PaymentStatus string `query:"payment_status"`
	UserID        string `query:"user_id"`
	Page          int    `query:"page"`
	Limit         int    `query:"limit"`
}

// Create godoc
// @Summary      Crear pedido
// @Description  Valida todas las líneas contra el stock, captura nombre y precio vigentes y descuenta el stock.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateOrderRequest  true  "user_id, items, shipping_address, payment_method"
// @Success      201   {object}  dto.Response{data=dto.OrderResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if uid := GetUserID(c); uid != "" && in.UserID == "" {
		in.UserID = uid
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	o, err := h.uc.Create(ctx, order.FromCreateRequest(in))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Response{Success: true, Message: "pedido creado", Data: order.ToOrderResponse(o)})
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Produce      json
// @Param        status          query  string  false  "pending|processing|shipped|delivered|cancelled"
// @Param        payment_status  query  string  false  "pending|paid|failed"
// @Param        user_id         query  string  false  "Filtrar por usuario"
// @Param        page            query  int     false  "Página (desde 1)"
// @Param        limit           query  int     false  "Tamaño de página (default 20, máx 100)"
// @Success      200  {object}  dto.ListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var q orderListQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	page := dto.PageRequest{Limit: q.Limit}
	page.DefaultPage()
	if q.Page < 1 {
		q.Page = 1
	}
	page.Offset = (q.Page - 1) * page.Limit

	ctx, cancel := h.ctx(c)
	defer cancel()
	list, total, err := h.uc.List(ctx, repository.OrderFilter{
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		UserID:        q.UserID,
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		return h.fail(c, err)
	}
	res := order.ToOrderListResponse(list, total, page.Limit, page.Offset)
	return c.JSON(dto.ListResponse{
		Success:    true,
		Count:      len(res.Items),
		Total:      res.Total,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		Data:       res.Items,
	})
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {object}  dto.Response{data=dto.OrderResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	o, err := h.uc.Get(ctx, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Data: order.ToOrderResponse(o)})
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Description  pending→processing|shipped|cancelled; processing→shipped|cancelled; shipped→delivered|cancelled.
// @Description  Cancelar reintegra el stock una sola vez. "completed" se acepta como delivered.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string                        true  "ID del pedido"
// @Param        body  body      dto.UpdateOrderStatusRequest  true  "status"
// @Success      200   {object}  dto.Response{data=dto.OrderResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Status == "" {
		return missingParam(c, "status")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	o, err := h.uc.TransitionStatus(ctx, c.Params("id"), in.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Message: "estado actualizado", Data: order.ToOrderResponse(o)})
}

// UpdatePayment godoc
// @Summary      Cambiar estado de pago
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path      string                          true  "ID del pedido"
// @Param        body  body      dto.UpdatePaymentStatusRequest  true  "payment_status"
// @Success      200   {object}  dto.Response{data=dto.OrderResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/payment [patch]
func (h *OrderHandler) UpdatePayment(c *fiber.Ctx) error {
	var in dto.UpdatePaymentStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	o, err := h.uc.UpdatePaymentStatus(ctx, c.Params("id"), in.PaymentStatus)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Message: "estado de pago actualizado", Data: order.ToOrderResponse(o)})
}

// Delete godoc
// @Summary      Eliminar pedido
// @Description  Solo pendientes (reintegra stock) o cancelados (sin reintegro).
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {object}  dto.Response
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.uc.Delete(ctx, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Message: "pedido eliminado"})
}
