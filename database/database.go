package database

import (
	"fmt"
	"log"

	config "github.com/linguadesk/backoffice/configs"
	"github.com/linguadesk/backoffice/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Teacher{},
		&models.Student{},
		&models.Lesson{},
		&models.TeacherPayout{},
		&models.PayoutLineItem{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}

	// A lesson may be claimed by at most one line item whose parent payout is
	// not cancelled. Cancelling a payout releases its items instead of
	// deleting them, so the index only covers unreleased rows.
	err = DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payout_line_items_active_lesson
		 ON payout_line_items (lesson_id) WHERE NOT released`,
	).Error
	if err != nil {
		log.Fatalf("🔥 Failed to create lesson claim index: %v", err)
	}

	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	orgName := config.Config("ORGANIZATION_NAME")
	if orgName == "" {
		orgName = "Default School"
	}
	org := models.Organization{Name: orgName}
	if err := DB.Create(&org).Error; err != nil {
		log.Fatalf("🔥 Failed to seed organization: %v", err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		OrganizationID: org.ID,
		FullName:       config.Config("ADMIN_FULL_NAME"),
		Email:          adminEmail,
		Password:       string(hashedPassword),
		Role:           "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}
