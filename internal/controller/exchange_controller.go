// FILE: internal/controller/exchange_controller.go
package controller

import (
	"stock-ticker-be/internal/dto"
	"stock-ticker-be/internal/pkg/serverutils"
	"stock-ticker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IExchangeController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Stocks(ctx *fiber.Ctx) error
}

type exchangeController struct {
	service service.IExchangeService
}

func NewExchangeController(service service.IExchangeService) IExchangeController {
	return &exchangeController{service: service}
}

func (c *exchangeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/exchanges")
	h.Get("/", c.List)
	h.Get("/:shortName", c.Get)
	h.Get("/:shortName/stocks", c.Stocks)
}

func (c *exchangeController) List(ctx *fiber.Ctx) error {
	var req dto.ExchangeListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query string"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Exchanges", res))
}

func (c *exchangeController) Get(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.UserContext(), ctx.Params("shortName"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "exchange not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Exchange", res))
}

func (c *exchangeController) Stocks(ctx *fiber.Ctx) error {
	var req dto.ExchangeStocksRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query string"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.Stocks(ctx.UserContext(), ctx.Params("shortName"), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "exchange not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Stocks", res))
}
