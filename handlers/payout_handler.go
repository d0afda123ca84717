package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
	"github.com/linguadesk/backoffice/notifications"
	"github.com/linguadesk/backoffice/payout"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PayoutHandler exposes the payout engine over HTTP. Unlike the CRUD
// handlers it holds its service explicitly so the engine can be exercised
// against the in-memory store in tests.
type PayoutHandler struct {
	Service *payout.Service
}

func NewPayoutHandler(service *payout.Service) *PayoutHandler {
	return &PayoutHandler{Service: service}
}

func parsePeriod(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period_start, use YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period_end, use YYYY-MM-DD")
	}
	return start, end, nil
}

// respondPayoutError maps the engine's error kinds onto HTTP statuses.
func respondPayoutError(c *fiber.Ctx, err error) error {
	switch {
	case payout.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case payout.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case payout.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, payout.ErrNothingToPay):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("🔥 Payout operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

func (h *PayoutHandler) Preview(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	teacherID, err := uuid.Parse(c.Params("teacherId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	start, end, err := parsePeriod(c.Query("period_start"), c.Query("period_end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	preview, err := h.Service.Preview(c.Context(), orgID, teacherID, start, end)
	if err != nil {
		return respondPayoutError(c, err)
	}
	return c.JSON(preview)
}

type CreatePayoutRequest struct {
	PeriodStart string  `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string  `json:"period_end" validate:"required,datetime=2006-01-02"`
	Notes       *string `json:"notes,omitempty"`
}

func (h *PayoutHandler) Create(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	teacherID, err := uuid.Parse(c.Params("teacherId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	var req CreatePayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	start, end, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	created, preview, err := h.Service.Create(c.Context(), orgID, teacherID, start, end, req.Notes)
	if err != nil {
		return respondPayoutError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payout":  created,
		"preview": preview,
	})
}

type SetPayoutStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved paid cancelled"`
}

func (h *PayoutHandler) SetStatus(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	payoutID, err := uuid.Parse(c.Params("payoutId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout id"})
	}

	var req SetPayoutStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updated, err := h.Service.SetStatus(c.Context(), orgID, payoutID, req.Status)
	if err != nil {
		return respondPayoutError(c, err)
	}

	if req.Status == models.PayoutApproved || req.Status == models.PayoutPaid {
		go notifyPayoutStatus(updated)
	}

	return c.JSON(updated)
}

func (h *PayoutHandler) Delete(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	payoutID, err := uuid.Parse(c.Params("payoutId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payout id"})
	}

	if err := h.Service.Delete(c.Context(), orgID, payoutID); err != nil {
		return respondPayoutError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PayoutHandler) List(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	teacherID, err := uuid.Parse(c.Params("teacherId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	payouts, err := h.Service.List(c.Context(), orgID, teacherID)
	if err != nil {
		return respondPayoutError(c, err)
	}
	return c.JSON(payouts)
}

// ListMine lets a teacher see their own payout history.
func (h *PayoutHandler) ListMine(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	teacherID := currentUserID(c)

	payouts, err := h.Service.List(c.Context(), orgID, teacherID)
	if err != nil {
		return respondPayoutError(c, err)
	}
	return c.JSON(payouts)
}

func notifyPayoutStatus(p *models.TeacherPayout) {
	var teacher models.User
	if err := database.DB.First(&teacher, "id = ?", p.TeacherID).Error; err != nil {
		log.Printf("Could not load teacher %s for payout notification: %v", p.TeacherID, err)
		return
	}

	var subject, body string
	switch p.Status {
	case models.PayoutApproved:
		subject = "Your Payout Has Been Approved"
		body = fmt.Sprintf("<h1>Payout Approved</h1><p>Hello %s,</p><p>Your payout of %s %s for %s – %s has been approved and will be paid out shortly.</p>",
			teacher.FullName, p.TotalAmount.StringFixed(2), p.Currency,
			p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02"))
	case models.PayoutPaid:
		subject = "Your Payout Has Been Paid"
		body = fmt.Sprintf("<h1>Payout Paid</h1><p>Hello %s,</p><p>Your payout of %s %s has been transferred.</p>",
			teacher.FullName, p.TotalAmount.StringFixed(2), p.Currency)
	default:
		return
	}

	notifications.SendEmail(teacher.FullName, teacher.Email, subject, body)
}
