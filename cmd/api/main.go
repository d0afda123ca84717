package main

import (
	"log"
	"time"

	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/handlers"
	"github.com/linguadesk/backoffice/jobs"
	"github.com/linguadesk/backoffice/notifications"
	"github.com/linguadesk/backoffice/payout"
	"github.com/linguadesk/backoffice/payout/gormstore"
	"github.com/linguadesk/backoffice/routes"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()

	c := cron.New()
	c.AddFunc("*/5 * * * *", jobs.ConfirmElapsedLessons)
	c.AddFunc("*/5 * * * *", jobs.SendLessonReminders)
	go c.Start()
	log.Println("✅ Cron jobs scheduled successfully.")

	store := gormstore.New(database.DB)
	payoutService := payout.NewService(store, store, store, store)
	payoutHandler := handlers.NewPayoutHandler(payoutService)

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "LinguaDesk Back Office",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to LinguaDesk API",
		})
	})

	routes.AuthRoutes(app)
	routes.AdminRoutes(app, payoutHandler)
	routes.TeacherRoutes(app, payoutHandler)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Println("✅ Server is running on port 8080")
	err := app.Listen(":8080")
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
