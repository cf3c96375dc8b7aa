package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/papeleria-api/internal/application/cart"
	"github.com/jhoicas/papeleria-api/internal/application/dto"
)

// headerUserID alternativa a ?user_id= para clientes que no envían body.
const headerUserID = "X-User-ID"

// CartHandler maneja el carrito del usuario.
type CartHandler struct {
	handlerBase
	uc *cart.CartUseCase
}

// NewCartHandler construye el handler.
func NewCartHandler(uc *cart.CartUseCase, base handlerBase) *CartHandler {
	return &CartHandler{handlerBase: base, uc: uc}
}

// userID resuelve el usuario: token (si hay auth), body, query user_id o header X-User-ID.
func userID(c *fiber.Ctx, fromBody string) string {
	for _, v := range []string{GetUserID(c), fromBody, c.Query("user_id"), c.Get(headerUserID)} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Add godoc
// @Summary      Agregar producto al carrito
// @Description  Crea el carrito si no existe; si el producto ya está, suma cantidades y valida el total contra el stock.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AddCartItemRequest  true  "user_id, product_id, quantity >= 1"
// @Success      200   {object}  dto.Response{data=dto.CartResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart [post]
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	uid := userID(c, in.UserID)
	if uid == "" {
		return missingParam(c, "user_id")
	}
	if in.ProductID == "" {
		return missingParam(c, "product_id")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	out, err := h.uc.Add(ctx, uid, in.ProductID, in.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Message: "producto agregado al carrito", Data: out})
}

// View godoc
// @Summary      Ver carrito
// @Description  Devuelve el carrito con nombre, precio y stock vigentes de cada producto. Vacío si no existe.
// @Tags         cart
// @Produce      json
// @Param        user_id  query  string  true  "ID del usuario (o header X-User-ID)"
// @Success      200  {object}  dto.Response{data=dto.CartResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/cart [get]
func (h *CartHandler) View(c *fiber.Ctx) error {
	uid := userID(c, "")
	if uid == "" {
		return missingParam(c, "user_id")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	out, err := h.uc.View(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Data: out})
}

// Update godoc
// @Summary      Cambiar la cantidad de un producto del carrito
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        product_id  path      string                     true  "ID del producto"
// @Param        body        body      dto.UpdateCartItemRequest  true  "user_id, quantity >= 1"
// @Success      200  {object}  dto.Response{data=dto.CartResponse}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart/{product_id} [put]
func (h *CartHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	uid := userID(c, in.UserID)
	if uid == "" {
		return missingParam(c, "user_id")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	out, err := h.uc.SetQuantity(ctx, uid, c.Params("product_id"), in.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Message: "carrito actualizado", Data: out})
}

// Remove godoc
// @Summary      Quitar un producto del carrito
// @Tags         cart
// @Produce      json
// @Param        product_id  path   string  true  "ID del producto"
// @Param        user_id     query  string  true  "ID del usuario"
// @Success      200  {object}  dto.Response{data=dto.CartResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart/{product_id} [delete]
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	uid := userID(c, "")
	if uid == "" {
		return missingParam(c, "user_id")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	out, err := h.uc.Remove(ctx, uid, c.Params("product_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Message: "producto eliminado del carrito", Data: out})
}

// Clear godoc
// @Summary      Vaciar carrito
// @Tags         cart
// @Produce      json
// @Param        user_id  query  string  true  "ID del usuario"
// @Success      200  {object}  dto.Response{data=dto.CartResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	uid := userID(c, "")
	if uid == "" {
		return missingParam(c, "user_id")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	out, err := h.uc.Clear(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.Response{Success: true, Message: "carrito vaciado", Data: out})
}
