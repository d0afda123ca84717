package handlers

import (
	"time"

	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ScheduleLessonRequest struct {
	TeacherID       string `json:"teacher_id" validate:"required,uuid"`
	StudentID       string `json:"student_id" validate:"required,uuid"`
	ScheduledAt     string `json:"scheduled_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0,lte=480"`
}

func ScheduleLesson(c *fiber.Ctx) error {
	orgID := currentOrgID(c)

	var req ScheduleLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	teacherID, _ := uuid.Parse(req.TeacherID)
	studentID, _ := uuid.Parse(req.StudentID)
	scheduledAt, _ := time.Parse(time.RFC3339, req.ScheduledAt)

	var teacher models.Teacher
	if err := database.DB.Where("user_id = ? AND organization_id = ?", teacherID, orgID).First(&teacher).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Teacher not found"})
	}
	var student models.Student
	if err := database.DB.Where("id = ? AND organization_id = ?", studentID, orgID).First(&student).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	lesson := models.Lesson{
		OrganizationID:  orgID,
		TeacherID:       teacherID,
		StudentID:       studentID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		Status:          models.LessonScheduled,
	}
	if err := database.DB.Create(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to schedule lesson"})
	}

	return c.Status(fiber.StatusCreated).JSON(lesson)
}

type CancelLessonRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// CancelLesson records the cancellation moment; whether the teacher still
// gets paid for it is decided later by the payout engine against the
// organization's late-cancellation policy.
func CancelLesson(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	lessonID := c.Params("lessonId")

	var req CancelLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var lesson models.Lesson
	if err := database.DB.Where("id = ? AND organization_id = ?", lessonID, orgID).First(&lesson).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}
	if lesson.Status != models.LessonScheduled && lesson.Status != models.LessonConfirmed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only scheduled or confirmed lessons can be cancelled"})
	}

	now := time.Now()
	lesson.Status = models.LessonCancelled
	lesson.CancelledAt = &now
	lesson.CancellationReason = &req.Reason
	if err := database.DB.Save(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to cancel lesson"})
	}

	return c.JSON(lesson)
}

func setLessonStatus(c *fiber.Ctx, from []string, to string) error {
	orgID := currentOrgID(c)
	lessonID := c.Params("lessonId")

	var lesson models.Lesson
	if err := database.DB.Where("id = ? AND organization_id = ?", lessonID, orgID).First(&lesson).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lesson not found"})
	}

	allowed := false
	for _, s := range from {
		if lesson.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Lesson is in status '" + lesson.Status + "'"})
	}

	lesson.Status = to
	if err := database.DB.Save(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update lesson"})
	}
	return c.JSON(lesson)
}

func CompleteLesson(c *fiber.Ctx) error {
	return setLessonStatus(c, []string{models.LessonScheduled, models.LessonConfirmed}, models.LessonCompleted)
}

func MarkLessonNoShow(c *fiber.Ctx) error {
	return setLessonStatus(c, []string{models.LessonScheduled, models.LessonConfirmed}, models.LessonNoShow)
}

func ListTeacherLessons(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	teacherID := c.Params("teacherId")

	var lessons []models.Lesson
	database.DB.Preload("Student").
		Where("organization_id = ? AND teacher_id = ?", orgID, teacherID).
		Order("scheduled_at desc").
		Find(&lessons)
	return c.JSON(lessons)
}

func GetMyLessons(c *fiber.Ctx) error {
	orgID := currentOrgID(c)
	teacherID := currentUserID(c)

	var lessons []models.Lesson
	database.DB.Preload("Student").
		Where("organization_id = ? AND teacher_id = ?", orgID, teacherID).
		Order("scheduled_at desc").
		Find(&lessons)
	return c.JSON(lessons)
}
