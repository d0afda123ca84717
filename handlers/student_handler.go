package handlers

import (
	"math"
	"strconv"
	"strings"

	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
	"github.com/linguadesk/backoffice/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StudentRequest struct {
	FullName string  `json:"full_name" validate:"required,min=3"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty"`
	Level    *string `json:"level,omitempty" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2"`
}

func CreateStudent(c *fiber.Ctx) error {
	orgID := currentOrgID(c)

	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var student models.Student
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		reference, err := utils.GenerateUniquePaymentReference(tx)
		if err != nil {
			return err
		}

		student = models.Student{
			OrganizationID:   orgID,
			FullName:         req.FullName,
			Email:            req.Email,
			Phone:            req.Phone,
			Level:            req.Level,
			PaymentReference: &reference,
		}
		return tx.Create(&student).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create student"})
	}

	return c.Status(fiber.StatusCreated).JSON(student)
}

func UpdateStudent(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	studentID := c.Params("studentId")

	var student models.Student
	if err := database.DB.Where("id = ? AND organization_id = ?", studentID, orgID).First(&student).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	student.FullName = req.FullName
	student.Email = req.Email
	student.Phone = req.Phone
	student.Level = req.Level
	database.DB.Save(&student)

	return c.JSON(student)
}

func ListStudents(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	search := strings.TrimSpace(c.Query("search"))
	offset := (page - 1) * limit

	var students []models.Student
	var total int64

	query := database.DB.Model(&models.Student{}).Where("organization_id = ?", orgID)
	countQuery := database.DB.Model(&models.Student{}).Where("organization_id = ?", orgID)

	if search != "" {
		searchTerm := "%" + search + "%"
		query = query.Where("full_name ILIKE ?", searchTerm)
		countQuery = countQuery.Where("full_name ILIKE ?", searchTerm)
	}

	countQuery.Count(&total)
	query.Order("full_name asc").Offset(offset).Limit(limit).Find(&students)

	return c.JSON(fiber.Map{
		"data": students,
		"meta": fiber.Map{
			"total_students": total,
			"total_pages":    int(math.Ceil(float64(total) / float64(limit))),
			"current_page":   page,
		},
	})
}

func DeactivateStudent(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	studentID := c.Params("studentId")

	result := database.DB.Model(&models.Student{}).
		Where("id = ? AND organization_id = ?", studentID, orgID).
		Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate student"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
