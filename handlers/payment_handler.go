package handlers

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImportBankStatement ingests a bank statement CSV with columns
// date,amount,currency,reference,description and records one Payment per
// row. Rows whose reference matches a student's payment reference are linked
// to that student; the rest are kept unmatched for manual review.
func ImportBankStatement(c *fiber.Ctx) error {
	orgID := currentOrgID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A CSV file is required in the 'file' field"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open uploaded file"})
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Empty or unreadable CSV file"})
	}
	if len(header) < 4 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Expected columns: date, amount, currency, reference, description"})
	}

	var imported, matched int
	var failures []string

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		line := 1
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			line++
			if err != nil {
				failures = append(failures, "line "+strconv.Itoa(line)+": unreadable row")
				continue
			}

			paidOn, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
			if err != nil {
				failures = append(failures, "line "+strconv.Itoa(line)+": bad date")
				continue
			}
			amount, err := decimal.NewFromString(strings.TrimSpace(record[1]))
			if err != nil || !amount.IsPositive() {
				failures = append(failures, "line "+strconv.Itoa(line)+": bad amount")
				continue
			}

			currency := strings.ToUpper(strings.TrimSpace(record[2]))
			reference := strings.ToUpper(strings.TrimSpace(record[3]))
			var description *string
			if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
				d := strings.TrimSpace(record[4])
				description = &d
			}

			payment := models.Payment{
				OrganizationID: orgID,
				Amount:         amount,
				Currency:       currency,
				PaidOn:         paidOn,
				Reference:      reference,
				RawDescription: description,
				Source:         "bank_import",
			}

			if reference != "" {
				var student models.Student
				err := tx.Where("organization_id = ? AND payment_reference = ?", orgID, reference).First(&student).Error
				if err == nil {
					payment.StudentID = &student.ID
					matched++
				}
			}

			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to import statement: " + err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"imported":  imported,
		"matched":   matched,
		"unmatched": imported - matched,
		"failures":  failures,
	})
}

func ListPayments(c *fiber.Ctx) error {
	orgID := currentOrgID(c)

	var payments []models.Payment
	database.DB.Preload("Student").
		Where("organization_id = ?", orgID).
		Order("paid_on desc").
		Find(&payments)
	return c.JSON(payments)
}

