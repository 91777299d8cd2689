package controllers

import (
	"strconv"

	"billing-backend/database"
	"billing-backend/middlewares"
	"billing-backend/models"
	"billing-backend/services"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AllocationInput struct {
	StatementID string `json:"statement_id" validate:"required"`
	Amount      string `json:"amount" validate:"required,money"`
}

type RecordPaymentInput struct {
	ClientID        string            `json:"client_id" validate:"required"`
	PaymentDate     string            `json:"payment_date" validate:"required,dateonly"`
	Amount          string            `json:"amount" validate:"required,money"`
	Method          string            `json:"method" validate:"required"`
	ManualInvoiceNo string            `json:"manual_invoice_no" validate:"required"`
	ReferenceNo     string            `json:"reference_no"`
	Notes           string            `json:"notes"`
	Allocations     []AllocationInput `json:"allocations"`
}

// RecordPayment writes a received payment; allocations supplied here apply
// atomically with the record, in the order given.
func RecordPayment(c *fiber.Ctx) error {
	var input RecordPaymentInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	paymentDate, err := parseDate(input.PaymentDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment_date, expected YYYY-MM-DD")
	}
	amount, err := utils.ParseMoney(input.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	allocations := make([]services.AllocationRequest, 0, len(input.Allocations))
	for i, a := range input.Allocations {
		applied, err := utils.ParseMoney(a.Amount)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid allocation amount at index "+strconv.Itoa(i))
		}
		allocations = append(allocations, services.AllocationRequest{
			StatementID: a.StatementID,
			Amount:      applied,
		})
	}

	payment, err := services.RecordPayment(database.DB, services.RecordPaymentInput{
		ClientID:        input.ClientID,
		PaymentDate:     paymentDate,
		Amount:          amount,
		Method:          input.Method,
		ManualInvoiceNo: input.ManualInvoiceNo,
		ReferenceNo:     input.ReferenceNo,
		Notes:           input.Notes,
		Allocations:     allocations,
	}, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(payment)
}

func GetPayments(c *fiber.Ctx) error {
	var payments []models.Payment
	q := database.DB.Preload("Client").Preload("Allocations").Order("payment_date desc, created_at desc")
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if method := c.Query("method"); method != "" {
		q = q.Where("method = ?", method)
	}
	if err := q.Find(&payments).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list payments")
	}
	return c.JSON(payments)
}

func GetPayment(c *fiber.Ctx) error {
	var payment models.Payment
	err := database.DB.Preload("Client").Preload("Allocations").
		First(&payment, "id = ?", c.Params("id")).Error
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "payment not found")
	}
	return c.JSON(payment)
}

func VerifyPayment(c *fiber.Ctx) error {
	payment, err := services.VerifyPayment(database.DB, c.Params("id"), actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(payment)
}

func DeletePayment(c *fiber.Ctx) error {
	if err := services.DeletePayment(database.DB, c.Params("id"), actorID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "payment deleted"})
}

type CreateAllocationInput struct {
	StatementID string `json:"statement_id" validate:"required"`
	Amount      string `json:"amount" validate:"required,money"`
}

// CreateAllocation applies part of a payment to one statement.
func CreateAllocation(c *fiber.Ctx) error {
	var input CreateAllocationInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	amount, err := utils.ParseMoney(input.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	allocation, err := services.Allocate(database.DB, c.Params("id"), input.StatementID, amount, actorID(c))
	if err != nil {
		return err
	}
	return c.JSON(allocation)
}

func ListAllocations(c *fiber.Ctx) error {
	allocations, err := services.AllocationsForPayment(database.DB, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(allocations)
}

// ReverseAllocation undoes one allocation, restoring the statement balance
// and the payment's remaining-unallocated amount.
func ReverseAllocation(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid allocation id")
	}
	if err := services.ReverseAllocation(database.DB, uint(id), actorID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "allocation reversed"})
}
