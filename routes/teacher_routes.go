package routes

import (
	"github.com/linguadesk/backoffice/handlers"
	"github.com/linguadesk/backoffice/middleware"
	"github.com/gofiber/fiber/v2"
)

func TeacherRoutes(app *fiber.App, payouts *handlers.PayoutHandler) {
	api := app.Group("/api/v1")

	teacher := api.Group("/teacher", middleware.Protected(), middleware.TeacherRequired())
	teacher.Get("/profile/me", handlers.GetMyTeacherProfile)
	teacher.Get("/lessons", handlers.GetMyLessons)
	teacher.Get("/payouts", payouts.ListMine)
}
