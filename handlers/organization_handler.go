package handlers

import (
	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
	"github.com/gofiber/fiber/v2"
)

func GetOrganization(c *fiber.Ctx) error {
	orgID := currentOrgID(c)

	var org models.Organization
	if err := database.DB.First(&org, "id = ?", orgID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Organization not found"})
	}
	return c.JSON(org)
}

type PayoutSettingsRequest struct {
	Timezone                    string `json:"timezone" validate:"required,timezone"`
	Currency                    string `json:"currency" validate:"required,iso4217"`
	LateCancellationWindowHours int    `json:"late_cancellation_window_hours" validate:"min=0,max=168"`
	LateCancellationPercent     int    `json:"late_cancellation_percent" validate:"min=0,max=100"`
}

// UpdatePayoutSettings changes the policy future previews use. Existing
// payouts are frozen records and are never recomputed.
func UpdatePayoutSettings(c *fiber.Ctx) error {
	orgID := currentOrgID(c)

	var req PayoutSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var org models.Organization
	if err := database.DB.First(&org, "id = ?", orgID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Organization not found"})
	}

	org.Timezone = req.Timezone
	org.Currency = req.Currency
	org.LateCancellationWindowHours = req.LateCancellationWindowHours
	org.LateCancellationPercent = req.LateCancellationPercent
	if err := database.DB.Save(&org).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update settings"})
	}

	return c.JSON(org)
}
