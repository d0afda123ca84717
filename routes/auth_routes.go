package routes

import (
	"github.com/linguadesk/backoffice/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterOrganization)
	auth.Post("/login", handlers.LoginUser)
}
