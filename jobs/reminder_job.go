package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
	"github.com/linguadesk/backoffice/notifications"
)

func SendLessonReminders() {
	log.Println("Running job: SendLessonReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcoming []models.Lesson
	err := database.DB.
		Preload("Student").
		Preload("Teacher").
		Where("status = ? AND scheduled_at BETWEEN ? AND ?", models.LessonScheduled, lowerBound, upperBound).
		Find(&upcoming).Error
	if err != nil {
		log.Printf("Error checking for upcoming lessons: %v", err)
		return
	}

	if len(upcoming) == 0 {
		return
	}

	for _, lesson := range upcoming {
		log.Printf("Sending reminder for lesson ID: %s", lesson.ID)

		emailSubject := "Reminder: Your Lesson Starts in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Lesson Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that your lesson is scheduled to start at %s.</p>",
			lesson.ScheduledAt.Format(time.Kitchen),
		)

		if lesson.Student.Email != nil {
			go notifications.SendEmail(lesson.Student.FullName, *lesson.Student.Email, emailSubject, emailBody)
		}
		go notifications.SendEmail(lesson.Teacher.FullName, lesson.Teacher.Email, emailSubject, emailBody)
	}
}
