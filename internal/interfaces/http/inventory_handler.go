package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/papeleria-api/internal/application/dto"
	"github.com/jhoicas/papeleria-api/internal/application/inventory"
	"github.com/jhoicas/papeleria-api/internal/domain/entity"
)

// InventoryHandler maneja el kardex manual (entradas/salidas de stock).
type InventoryHandler struct {
	handlerBase
	uc *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LedgerUseCase, base handlerBase) *InventoryHandler {
	return &InventoryHandler{handlerBase: base, uc: uc}
}

// Create godoc
// @Summary      Registrar entrada (import) o salida (export) de stock
// @Description  Aplica el movimiento al stock y deja el registro en el kardex.
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateInventoryRecordRequest  true  "product_id, type (import|export), change_qty > 0, note"
// @Success      201   {object}  dto.RecordInventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventories [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInventoryRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	out, err := h.uc.RecordFromRequest(ctx, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar registros del kardex (más recientes primero)
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de resultados (default 20, máx 100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.ListResponse
// @Router       /api/inventories [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, err := h.uc.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(recordList(list))
}

// ListByProduct godoc
// @Summary      Kardex de un producto
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        limit      query  int     false  "Máximo de resultados"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.ListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventories/product/{productId} [get]
func (h *InventoryHandler) ListByProduct(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	ctx, cancel := h.ctx(c)
	defer cancel()
	list, err := h.uc.ListByProduct(ctx, c.Params("productId"), page.Limit, page.Offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(recordList(list))
}

// GetByID godoc
// @Summary      Obtener un registro del kardex
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del registro"
// @Success      200  {object}  dto.Response{data=dto.InventoryRecordResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventories/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	r, err := h.uc.GetByID(ctx, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Data: inventory.ToRecordResponse(r)})
}

// Delete godoc
// @Summary      Eliminar un registro del kardex
// @Description  Solo borra el registro (limpieza de auditoría). NO revierte su efecto sobre el stock.
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del registro"
// @Success      200  {object}  dto.Response
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventories/{id} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.uc.DeleteRecord(ctx, c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Message: "registro eliminado; el stock no se modifica"})
}

func recordList(list []*entity.InventoryRecord) dto.ListResponse {
	out := make([]dto.InventoryRecordResponse, 0, len(list))
	for _, r := range list {
		out = append(out, inventory.ToRecordResponse(r))
	}
	return dto.ListResponse{Success: true, Count: len(out), Data: out}
}
