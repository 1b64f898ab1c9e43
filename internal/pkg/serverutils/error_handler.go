package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// StatusMapper maps a domain error to an HTTP status; 0 means "not mine"
type StatusMapper func(err error) int

var mappers []StatusMapper

// RegisterStatusMapper adds a domain error mapping consulted before the defaults
func RegisterStatusMapper(m StatusMapper) {
	mappers = append(mappers, m)
}

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusUnprocessableEntity
	}
	for _, m := range mappers {
		if code := m(err); code != 0 {
			return code
		}
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware turns handler errors into the JSON error body
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code := statusOf(err)
		body := ErrorBody{Success: false, Message: err.Error()}
		var ve *ValidationError
		if errors.As(err, &ve) {
			body.Message = "Validation failed"
			body.Errors = ve.Fields
		}
		if code == fiber.StatusInternalServerError {
			body.Message = "Internal server error"
		}
		return ctx.Status(code).JSON(body)
	}
}
