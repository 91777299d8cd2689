package controllers

import (
	"encoding/json"
	"strings"

	"billing-backend/database"
	"billing-backend/middlewares"
	"billing-backend/models"
	"billing-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type ClientInput struct {
	Name           string   `json:"name" validate:"required"`
	BillingAddress string   `json:"billing_address"`
	TIN            string   `json:"tin"`
	Group          string   `json:"group"`
	Tags           []string `json:"tags"`
	Aliases        []string `json:"aliases"`
}

func CreateClient(c *fiber.Ctx) error {
	var input ClientInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	client := models.Client{
		Name:           input.Name,
		Status:         models.ClientActive,
		BillingAddress: input.BillingAddress,
		TIN:            input.TIN,
		Group:          input.Group,
		Tags:           toJSONArray(input.Tags),
		Aliases:        toJSONArray(input.Aliases),
	}
	if err := database.DB.Create(&client).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create client",
			"error":   err.Error(),
		})
	}
	return c.JSON(client)
}

func GetClients(c *fiber.Ctx) error {
	var clients []models.Client
	q := database.DB.Order("normalized_name")
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&clients).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list clients")
	}
	return c.JSON(clients)
}

func GetClient(c *fiber.Ctx) error {
	var client models.Client
	if err := database.DB.First(&client, "id = ?", c.Params("id")).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "client not found")
	}
	return c.JSON(client)
}

type ClientPatch struct {
	Name           *string   `json:"name"`
	BillingAddress *string   `json:"billing_address"`
	TIN            *string   `json:"tin"`
	Group          *string   `json:"group"`
	Tags           *[]string `json:"tags"`
	Aliases        *[]string `json:"aliases"`
}

func UpdateClient(c *fiber.Ctx) error {
	var patch ClientPatch
	if err := middlewares.BindAndValidate(c, &patch); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&patch)

	var client models.Client
	if err := database.DB.First(&client, "id = ?", c.Params("id")).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "client not found")
	}

	updates := utils.UpdatesFromPtrDTO(&patch, nil)
	if patch.Tags != nil {
		updates["tags"] = toJSONArray(*patch.Tags)
	}
	if patch.Aliases != nil {
		updates["aliases"] = toJSONArray(*patch.Aliases)
	}
	if name, ok := updates["name"].(string); ok {
		updates["normalized_name"] = strings.ToLower(strings.TrimSpace(name))
	}
	if len(updates) == 0 {
		return c.JSON(client)
	}
	if err := database.DB.Model(&client).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update client",
			"error":   err.Error(),
		})
	}
	return c.JSON(client)
}

// DeactivateClient flips the client to inactive. Clients are never hard
// deleted while statements or payments reference them.
func DeactivateClient(c *fiber.Ctx) error {
	var client models.Client
	if err := database.DB.First(&client, "id = ?", c.Params("id")).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "client not found")
	}
	if err := database.DB.Model(&client).Update("status", models.ClientInactive).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not deactivate client")
	}
	client.Status = models.ClientInactive
	return c.JSON(client)
}

func toJSONArray(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}
