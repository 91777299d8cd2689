package middlewares

import (
	"log"

	"billing-backend/errs"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Typed ledger errors (code + offending field/id)
	if de, ok := errs.As(err); ok {
		body := fiber.Map{"message": de.Message, "code": de.Code}
		if de.Field != "" {
			body["field"] = de.Field
		}
		if de.Entity != "" {
			body["entity"] = de.Entity
		}
		if de.Code == errs.CodeDatabase {
			log.Printf("internal error: %v", err)
			body["message"] = "internal server error"
			delete(body, "entity")
		}
		return c.Status(de.StatusCode()).JSON(body)
	}

	// 2) Fiber errors (use their status code + message)
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 3) Validation errors (422 + per-field info)
	if ve, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 4) Unknown errors (500)
	log.Printf("internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
