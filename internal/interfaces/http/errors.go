package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/papeleria-api/internal/application/dto"
	"github.com/jhoicas/papeleria-api/internal/domain"
	"github.com/rs/zerolog"
)

// msgUnknownOutcome se responde cuando vence el plazo: la operación pudo haberse confirmado o no.
const msgUnknownOutcome = "tiempo de espera agotado; estado de la operación desconocido"

// errorMapping código HTTP y código de negocio por error de dominio.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, "INSUFFICIENT_STOCK"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrInvalidChangeQty, fiber.StatusBadRequest, "INVALID_CHANGE_QTY"},
	{domain.ErrInvalidRecordType, fiber.StatusBadRequest, "INVALID_RECORD_TYPE"},
	{domain.ErrInvalidStatus, fiber.StatusBadRequest, "INVALID_STATUS"},
	{domain.ErrInvalidTransition, fiber.StatusBadRequest, "INVALID_TRANSITION"},
	{domain.ErrNotDeletable, fiber.StatusBadRequest, "NOT_DELETABLE"},
	{domain.ErrEmptyOrder, fiber.StatusBadRequest, "EMPTY_ORDER"},
	{domain.ErrInvalidShippingAddress, fiber.StatusBadRequest, "INVALID_SHIPPING_ADDRESS"},
	{domain.ErrInvalidPaymentMethod, fiber.StatusBadRequest, "INVALID_PAYMENT_METHOD"},
	{domain.ErrInvalidPaymentStatus, fiber.StatusBadRequest, "INVALID_PAYMENT_STATUS"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// handlerBase comparte el plazo por petición y el logger entre handlers.
type handlerBase struct {
	timeout time.Duration
	log     zerolog.Logger
}

// ctx contexto de la petición acotado por el plazo configurado.
func (b handlerBase) ctx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), b.timeout)
}

// fail traduce err al envelope {success:false, code, message}. Los fallos de almacenamiento
// se responden como 500 con el mensaje subyacente.
func (b handlerBase) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		b.log.Warn().Err(err).Str("path", c.Path()).Msg("plazo de la petición agotado")
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{Code: "TIMEOUT", Message: msgUnknownOutcome})
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	b.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func missingParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: name + " es requerido"})
}
