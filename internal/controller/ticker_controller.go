// FILE: internal/controller/ticker_controller.go
package controller

import (
	"errors"

	"stock-ticker-be/internal/dto"
	"stock-ticker-be/internal/pkg/serverutils"
	"stock-ticker-be/internal/service"
	"stock-ticker-be/pkg/ticker"

	"github.com/gofiber/fiber/v2"
)

type ITickerController interface {
	RegisterRoutes(r fiber.Router)
	Resolve(ctx *fiber.Ctx) error
}

type tickerController struct {
	service service.ITickerService
}

func NewTickerController(service service.ITickerService) ITickerController {
	return &tickerController{service: service}
}

func (c *tickerController) RegisterRoutes(r fiber.Router) {
	r.Get("/ticker", c.Resolve)
}

// Resolve handles GET /api/ticker?query=...&market=...&language=...
func (c *tickerController) Resolve(ctx *fiber.Ctx) error {
	var req dto.TickerRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "invalid query string").WithReason(string(ticker.CodeInvalidInput)))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.Resolve(ctx.UserContext(), &req)
	if err != nil {
		var pe *ticker.PipelineError
		if errors.As(err, &pe) {
			status := statusFor(pe.Code)
			return ctx.Status(status).JSON(serverutils.ErrorResponse(status, pe.Error()).WithReason(string(pe.Code)))
		}
		return err
	}

	message := "Stocks resolved"
	if res.LowConfidence {
		message = "Stocks resolved with low confidence"
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func statusFor(code ticker.Code) int {
	switch code {
	case ticker.CodeInvalidInput:
		return fiber.StatusBadRequest
	case ticker.CodeSchemaViolation, ticker.CodeReasoningFailed:
		return fiber.StatusBadGateway
	case ticker.CodeStoreUnavailable:
		return fiber.StatusServiceUnavailable
	case ticker.CodeCanceled:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
