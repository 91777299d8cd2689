package controllers

import (
	"strings"
	"time"

	"billing-backend/database"
	"billing-backend/middlewares"
	"billing-backend/models"
	"billing-backend/services"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type EngagementInput struct {
	ClientID           string `json:"client_id" validate:"required"`
	Type               string `json:"type" validate:"required"`
	Title              string `json:"title" validate:"required"`
	Summary            string `json:"summary"`
	StartDate          string `json:"start_date" validate:"required,dateonly"`
	EndDate            string `json:"end_date" validate:"omitempty,dateonly"`
	BaseFee            string `json:"base_fee" validate:"omitempty,money"`
	DefaultDescription string `json:"default_description"`
	BillingDay         int    `json:"billing_day"`
}

func CreateEngagement(c *fiber.Ctx) error {
	var input EngagementInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	startDate, err := parseDate(input.StartDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
	}
	var endDate *time.Time
	if input.EndDate != "" {
		d, err := parseDate(input.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
		}
		endDate = &d
	}
	baseFee := decimal.Zero
	if input.BaseFee != "" {
		if baseFee, err = utils.ParseMoney(input.BaseFee); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	engagement, err := services.CreateEngagement(database.DB, services.CreateEngagementInput{
		ClientID:           input.ClientID,
		Type:               input.Type,
		Title:              input.Title,
		Summary:            input.Summary,
		StartDate:          startDate,
		EndDate:            endDate,
		BaseFee:            baseFee,
		DefaultDescription: input.DefaultDescription,
		BillingDay:         input.BillingDay,
	}, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(engagement)
}

func GetEngagements(c *fiber.Ctx) error {
	var engagements []models.Engagement
	q := database.DB.Preload("Client").Order("created_at")
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&engagements).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list engagements")
	}
	return c.JSON(engagements)
}

func GetEngagement(c *fiber.Ctx) error {
	var engagement models.Engagement
	if err := database.DB.Preload("Client").First(&engagement, "id = ?", c.Params("id")).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "engagement not found")
	}
	return c.JSON(engagement)
}

type EngagementPatch struct {
	Title              *string `json:"title"`
	Summary            *string `json:"summary"`
	Status             *string `json:"status"`
	BaseFee            *string `json:"base_fee"`
	DefaultDescription *string `json:"default_description"`
	BillingDay         *int    `json:"billing_day"`
}

func UpdateEngagement(c *fiber.Ctx) error {
	var patch EngagementPatch
	if err := middlewares.BindAndValidate(c, &patch); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&patch)

	in := services.UpdateEngagementInput{
		Title:              patch.Title,
		Summary:            patch.Summary,
		Status:             patch.Status,
		DefaultDescription: patch.DefaultDescription,
		BillingDay:         patch.BillingDay,
	}
	if patch.BaseFee != nil {
		fee, err := utils.ParseMoney(*patch.BaseFee)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		in.BaseFee = &fee
	}

	engagement, err := services.UpdateEngagement(database.DB, c.Params("id"), in, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(engagement)
}

type EndEngagementInput struct {
	EndDate string `json:"end_date" validate:"required,dateonly"`
}

func EndEngagement(c *fiber.Ctx) error {
	var input EndEngagementInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	endDate, err := parseDate(strings.TrimSpace(input.EndDate))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
	}
	engagement, err := services.EndEngagement(database.DB, c.Params("id"), endDate, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(engagement)
}

type RunCycleInput struct {
	Period string `json:"period" validate:"required,period"`
}

// RunCycle kicks off retainer draft generation for one period across all
// eligible engagements, reporting per-engagement outcomes.
func RunCycle(c *fiber.Ctx) error {
	var input RunCycleInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	results, err := services.RunCycle(database.DB, strings.TrimSpace(input.Period), actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"period": input.Period, "results": results})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func actorID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
