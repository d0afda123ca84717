package routes

import (
	"github.com/linguadesk/backoffice/handlers"
	"github.com/linguadesk/backoffice/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, payouts *handlers.PayoutHandler) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/organization", handlers.GetOrganization)
	admin.Put("/organization/payout-settings", handlers.UpdatePayoutSettings)

	teachers := admin.Group("/teachers")
	teachers.Get("", handlers.ListTeachers)
	teachers.Post("", handlers.CreateTeacher)
	teachers.Get("/:teacherId", handlers.GetTeacher)
	teachers.Put("/:teacherId/rate", handlers.UpdateTeacherRate)
	teachers.Get("/:teacherId/lessons", handlers.ListTeacherLessons)

	teachers.Get("/:teacherId/payouts/preview", payouts.Preview)
	teachers.Post("/:teacherId/payouts", payouts.Create)
	teachers.Get("/:teacherId/payouts", payouts.List)
	admin.Put("/payouts/:payoutId/status", payouts.SetStatus)
	admin.Delete("/payouts/:payoutId", payouts.Delete)

	students := admin.Group("/students")
	students.Get("", handlers.ListStudents)
	students.Post("", handlers.CreateStudent)
	students.Put("/:studentId", handlers.UpdateStudent)
	students.Delete("/:studentId", handlers.DeactivateStudent)

	lessons := admin.Group("/lessons")
	lessons.Post("", handlers.ScheduleLesson)
	lessons.Post("/:lessonId/cancel", handlers.CancelLesson)
	lessons.Post("/:lessonId/complete", handlers.CompleteLesson)
	lessons.Post("/:lessonId/no-show", handlers.MarkLessonNoShow)

	payments := admin.Group("/payments")
	payments.Get("", handlers.ListPayments)
	payments.Post("/import", handlers.ImportBankStatement)

	reports := admin.Group("/reports")
	reports.Get("/payouts", handlers.GeneratePayoutReport)
}
