// FILE: internal/controller/health_controller.go
package controller

import (
	"stock-ticker-be/internal/pkg/serverutils"
	"stock-ticker-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Check(ctx *fiber.Ctx) error
}

type healthController struct {
	service service.IHealthService
}

func NewHealthController(service service.IHealthService) IHealthController {
	return &healthController{service: service}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Check)
}

func (c *healthController) Check(ctx *fiber.Ctx) error {
	res := c.service.Check(ctx.UserContext())
	if res.Status != "ok" {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(fiber.StatusServiceUnavailable, "database unreachable"))
	}
	return ctx.JSON(serverutils.SuccessResponse("ok", res))
}
