package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/papeleria-api/internal/application/dto"
	"github.com/jhoicas/papeleria-api/internal/application/stock"
)

// ProductHandler lectura de productos y su stock (el catálogo se administra fuera de esta API).
type ProductHandler struct {
	handlerBase
	uc *stock.StockUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *stock.StockUseCase, base handlerBase) *ProductHandler {
	return &ProductHandler{handlerBase: base, uc: uc}
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        limit   query  int  false  "Máximo de resultados (default 20, máx 100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.ListResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
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
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, stock.ToProductResponse(p))
	}
	return c.JSON(dto.ListResponse{Success: true, Count: len(out), Data: out})
}

// GetByID godoc
// @Summary      Obtener producto con su stock actual
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "ID del producto"
// @Success      200  {object}  dto.Response{data=dto.ProductResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	p, err := h.uc.Get(ctx, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Data: stock.ToProductResponse(p)})
}

// GetStock godoc
// @Summary      Stock actual de un producto
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "ID del producto"
// @Success      200  {object}  dto.Response{data=dto.StockResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *ProductHandler) GetStock(c *fiber.Ctx) error {
	ctx, cancel := h.ctx(c)
	defer cancel()
	p, err := h.uc.Get(ctx, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Data: dto.StockResponse{ProductID: p.ID, Stock: p.Stock}})
}
