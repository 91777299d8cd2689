package middlewares

import (
	"time"

	"billing-backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator registers the ledger's field formats alongside the builtin
// tags: "period" (YYYY-MM), "dateonly" (YYYY-MM-DD) and "money" (decimal
// string, at most two decimal places).
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		_, _, err := utils.ParsePeriod(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseMoney(fl.Field().String())
		return err == nil
	})
	return v
}

// BindAndValidate parses the request body into dst and validates it.
// Returns fiber.ErrBadRequest for parse errors and a validator.ValidationErrors for validation issues.
func BindAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return validate.Struct(dst)
}

// ValidateStruct validates any struct value using the shared validator instance.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}
