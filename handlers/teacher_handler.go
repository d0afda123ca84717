package handlers

import (
	"errors"

	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateTeacherRequest struct {
	FullName   string  `json:"full_name" validate:"required,min=3"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6"`
	Headline   *string `json:"headline,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	HourlyRate *string `json:"hourly_rate,omitempty"`
	Currency   string  `json:"currency,omitempty" validate:"omitempty,iso4217"`
}

func CreateTeacher(c *fiber.Ctx) error {
	orgID := currentOrgID(c)

	var req CreateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var rate *decimal.Decimal
	if req.HourlyRate != nil {
		parsed, err := decimal.NewFromString(*req.HourlyRate)
		if err != nil || parsed.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hourly_rate must be a non-negative decimal"})
		}
		rate = &parsed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	var teacher models.Teacher
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			OrganizationID: orgID,
			FullName:       req.FullName,
			Email:          req.Email,
			Password:       string(hashedPassword),
			Role:           "teacher",
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.New("email already exists")
			}
			return err
		}

		teacher = models.Teacher{
			UserID:         user.ID,
			OrganizationID: orgID,
			Headline:       req.Headline,
			Bio:            req.Bio,
			HourlyRate:     rate,
			Currency:       req.Currency,
		}
		return tx.Create(&teacher).Error
	})
	if err != nil {
		if err.Error() == "email already exists" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create teacher"})
	}

	database.DB.Preload("User").First(&teacher, "user_id = ?", teacher.UserID)
	return c.Status(fiber.StatusCreated).JSON(teacher)
}

type UpdateTeacherRateRequest struct {
	HourlyRate *string `json:"hourly_rate"`
	Currency   string  `json:"currency" validate:"omitempty,iso4217"`
}

// UpdateTeacherRate changes the rate future payouts will snapshot. Line
// items of existing payouts keep the rate frozen at their creation time.
func UpdateTeacherRate(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	teacherID, err := uuid.Parse(c.Params("teacherId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher id"})
	}

	var req UpdateTeacherRateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var teacher models.Teacher
	if err := database.DB.Where("user_id = ? AND organization_id = ?", teacherID, orgID).First(&teacher).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
	}

	if req.HourlyRate == nil {
		teacher.HourlyRate = nil
	} else {
		parsed, err := decimal.NewFromString(*req.HourlyRate)
		if err != nil || parsed.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hourly_rate must be a non-negative decimal"})
		}
		teacher.HourlyRate = &parsed
	}
	if req.Currency != "" {
		teacher.Currency = req.Currency
	}

	if err := database.DB.Save(&teacher).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update teacher"})
	}
	return c.JSON(teacher)
}

func ListTeachers(c *fiber.Ctx) error {
	orgID := currentOrgID(c)

	var teachers []models.Teacher
	database.DB.Preload("User").
		Where("organization_id = ? AND status = ?", orgID, "active").
		Find(&teachers)
	return c.JSON(teachers)
}

func GetTeacher(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	teacherID := c.Params("teacherId")

	var teacher models.Teacher
	if err := database.DB.Preload("User").
		Where("user_id = ? AND organization_id = ?", teacherID, orgID).
		First(&teacher).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
	}
	return c.JSON(teacher)
}

func GetMyTeacherProfile(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	userID := currentUserID(c)

	var teacher models.Teacher
	if err := database.DB.Preload("User").
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&teacher).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher profile not found"})
	}
	return c.JSON(teacher)
}
