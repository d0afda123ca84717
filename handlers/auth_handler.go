package handlers

import (
	"errors"
	"time"

	config "github.com/linguadesk/backoffice/configs"
	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
	"github.com/linguadesk/backoffice/notifications"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	OrganizationName string `json:"organization_name" validate:"required,min=2"`
	Timezone         string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Currency         string `json:"currency,omitempty" validate:"omitempty,iso4217"`
	FullName         string `json:"full_name" validate:"required,min=3"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
}

type UserResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterOrganization signs a new school up: one organization plus its
// admin user, in a single transaction.
func RegisterOrganization(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	var newUser models.User
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		org := models.Organization{Name: req.OrganizationName}
		if req.Timezone != "" {
			org.Timezone = req.Timezone
		}
		if req.Currency != "" {
			org.Currency = req.Currency
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		newUser = models.User{
			OrganizationID: org.ID,
			FullName:       req.FullName,
			Email:          req.Email,
			Password:       string(hashedPassword),
			Role:           "admin",
		}
		if err := tx.Create(&newUser).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.New("email already exists")
			}
			return err
		}
		return nil
	})

	if err != nil {
		if err.Error() == "email already exists" {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create account"})
	}

	go notifications.SendEmail(newUser.FullName, newUser.Email, "Welcome!", "<h1>Welcome!</h1><p>Your school's back office is ready.</p>")

	response := UserResponse{
		ID:             newUser.ID.String(),
		OrganizationID: newUser.OrganizationID.String(),
		FullName:       newUser.FullName,
		Email:          newUser.Email,
		Role:           newUser.Role,
		CreatedAt:      newUser.CreatedAt,
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

func LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}
	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is deactivated"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"org_id":  user.OrganizationID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(config.Config("JWT_SECRET")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign token"})
	}

	return c.JSON(fiber.Map{
		"token": signed,
		"user": UserResponse{
			ID:             user.ID.String(),
			OrganizationID: user.OrganizationID.String(),
			FullName:       user.FullName,
			Email:          user.Email,
			Role:           user.Role,
			CreatedAt:      user.CreatedAt,
		},
	})
}
