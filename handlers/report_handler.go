package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
	"github.com/gofiber/fiber/v2"
)

// GeneratePayoutReport exports the organization's payouts created in a date
// range as CSV, one row per line item.
func GeneratePayoutReport(c *fiber.Ctx) error {
	orgID := currentOrgID(c)

	startDateStr := c.Query("start_date", time.Now().AddDate(0, -1, 0).Format("2006-01-02"))
	endDateStr := c.Query("end_date", time.Now().Format("2006-01-02"))

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date format. Use YYYY-MM-DD."})
	}
	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_date format. Use YYYY-MM-DD."})
	}
	endDate = endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	var payouts []models.TeacherPayout
	database.DB.
		Preload("LineItems").
		Where("organization_id = ? AND created_at BETWEEN ? AND ?", orgID, startDate, endDate).
		Order("created_at desc").
		Find(&payouts)

	teacherNames := map[string]string{}
	var teachers []models.User
	database.DB.Where("organization_id = ? AND role = ?", orgID, "teacher").Find(&teachers)
	for _, t := range teachers {
		teacherNames[t.ID.String()] = t.FullName
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)

	headers := []string{"Payout ID", "Teacher", "Period Start", "Period End", "Status", "Lesson Date", "Student", "Duration (min)", "Reason", "Percent", "Rate", "Amount", "Currency"}
	if err := w.Write(headers); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}

	for _, p := range payouts {
		for _, item := range p.LineItems {
			row := []string{
				p.ID.String(),
				teacherNames[p.TeacherID.String()],
				p.PeriodStart.Format("2006-01-02"),
				p.PeriodEnd.Format("2006-01-02"),
				p.Status,
				item.LessonDate.Format("2006-01-02 15:04"),
				item.StudentName,
				fmt.Sprintf("%d", item.DurationMinutes),
				item.QualificationReason,
				fmt.Sprintf("%d", item.PayoutPercent),
				item.HourlyRate.StringFixed(2),
				item.Amount.StringFixed(2),
				item.Currency,
			}
			if err := w.Write(row); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
			}
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"payouts_%s_to_%s.csv\"", startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	return c.Send(b.Bytes())
}
