package controllers

import (
	"billing-backend/database"
	"billing-backend/middlewares"
	"billing-backend/models"
	"billing-backend/services"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type StatementItemInput struct {
	Description string `json:"description" validate:"required"`
	Qty         string `json:"qty"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price"`
}

type GenerateStatementInput struct {
	Period string               `json:"period" validate:"required,period"`
	Items  []StatementItemInput `json:"items"`
}

// GenerateStatement produces a draft statement for one engagement and
// period. Retainers ignore the item payload; special engagements require it.
func GenerateStatement(c *fiber.Ctx) error {
	var input GenerateStatementInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	items := make([]services.ItemInput, 0, len(input.Items))
	for _, item := range input.Items {
		qty := decimal.NewFromInt(1)
		var err error
		if item.Qty != "" {
			if qty, err = decimal.NewFromString(item.Qty); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid qty "+item.Qty)
			}
		}
		price := decimal.Zero
		if item.UnitPrice != "" {
			if price, err = utils.ParseMoney(item.UnitPrice); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		items = append(items, services.ItemInput{
			Description: item.Description,
			Qty:         qty,
			Unit:        item.Unit,
			UnitPrice:   price,
		})
	}

	statement, err := services.GenerateForPeriod(database.DB, c.Params("id"), input.Period, items, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(statement)
}

func GetStatements(c *fiber.Ctx) error {
	var statements []models.BillingStatement
	q := database.DB.Preload("Client").Preload("Items").Order("created_at desc")
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	if engagementID := c.Query("engagement_id"); engagementID != "" {
		q = q.Where("engagement_id = ?", engagementID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if period := c.Query("period"); period != "" {
		q = q.Where("period = ?", period)
	}
	if err := q.Find(&statements).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list statements")
	}
	return c.JSON(statements)
}

func GetStatement(c *fiber.Ctx) error {
	var statement models.BillingStatement
	err := database.DB.Preload("Client").Preload("Engagement").Preload("Items").
		First(&statement, "id = ?", c.Params("id")).Error
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "statement not found")
	}
	return c.JSON(statement)
}

func SubmitStatementForReview(c *fiber.Ctx) error {
	statement, err := services.SubmitForReview(database.DB, c.Params("id"), actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(statement)
}

type IssueStatementInput struct {
	IssueDate string `json:"issue_date" validate:"required,dateonly"`
	DueDate   string `json:"due_date" validate:"required,dateonly"`
}

func IssueStatement(c *fiber.Ctx) error {
	var input IssueStatementInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	issueDate, err := parseDate(input.IssueDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid issue_date, expected YYYY-MM-DD")
	}
	dueDate, err := parseDate(input.DueDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid due_date, expected YYYY-MM-DD")
	}

	statement, err := services.IssueStatement(database.DB, c.Params("id"), issueDate, dueDate, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(statement)
}

type IssueBatchInput struct {
	StatementIDs []string `json:"statement_ids" validate:"required,min=1"`
	IssueDate    string   `json:"issue_date" validate:"required,dateonly"`
	DueDate      string   `json:"due_date" validate:"required,dateonly"`
}

// IssueBatch issues each id independently and reports per-id outcomes.
func IssueBatch(c *fiber.Ctx) error {
	var input IssueBatchInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	issueDate, err := parseDate(input.IssueDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid issue_date, expected YYYY-MM-DD")
	}
	dueDate, err := parseDate(input.DueDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid due_date, expected YYYY-MM-DD")
	}

	results := services.IssueBatch(database.DB, input.StatementIDs, issueDate, dueDate, actorID(c))
	return c.JSON(fiber.Map{"results": results})
}

type VoidStatementInput struct {
	Reason string `json:"reason" validate:"required"`
}

func VoidStatement(c *fiber.Ctx) error {
	var input VoidStatementInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	statement, err := services.VoidStatement(database.DB, c.Params("id"), input.Reason, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(statement)
}
