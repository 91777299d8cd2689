package controllers

import (
	"time"

	"billing-backend/database"
	"billing-backend/models"
	"billing-backend/services"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AgingReport buckets outstanding issued balances by days past due.
func AgingReport(c *fiber.Ctx) error {
	asOf := time.Now().UTC()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid as_of, expected YYYY-MM-DD")
		}
		asOf = parsed
	}
	report, err := services.Aging(database.DB, asOf)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// CollectionsRegister sums payments by date and method.
func CollectionsRegister(c *fiber.Ctx) error {
	var start, end *time.Time
	if raw := c.Query("start"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		}
		start = &parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		}
		end = &parsed
	}
	rows, err := services.CollectionsRegister(database.DB, start, end)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"rows": rows})
}

// UnappliedCreditsReport surfaces money received but not yet applied,
// per client.
func UnappliedCreditsReport(c *fiber.Ctx) error {
	rows, err := services.UnappliedCredits(database.DB)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"rows": rows})
}

// GetAuditLog returns the most recent audit entries.
func GetAuditLog(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 200)
	if limit > 500 {
		limit = 500
	}
	var entries []models.AuditLog
	if err := database.DB.Order("created_at desc").Limit(limit).Find(&entries).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load audit log")
	}
	return c.JSON(entries)
}
