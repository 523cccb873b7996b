// FILE: internal/pkg/serverutils/error_handler.go
package serverutils

import (
	"errors"
	"fmt"

	"stock-ticker-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns returned errors and panics into the standard
// error envelope.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("http", "Panic recovered", map[string]interface{}{
					"path":  ctx.Path(),
					"panic": fmt.Sprint(r),
				})
				err = ctx.Status(fiber.StatusInternalServerError).
					JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
			}
		}()

		err = ctx.Next()
		if err == nil {
			return nil
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(fiber.StatusBadRequest, ve.Error()).WithReason("INVALID_INPUT").WithErrors(ve.Fields))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		log.Error("http", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}
