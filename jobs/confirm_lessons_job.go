package jobs

import (
	"log"
	"time"

	"github.com/linguadesk/backoffice/database"
	"github.com/linguadesk/backoffice/models"
)

// ConfirmElapsedLessons sweeps scheduled lessons whose end time passed more
// than 15 minutes ago and marks them confirmed. The payout evaluator also
// treats past scheduled lessons as confirmed, so this sweep only makes the
// administrative state match what payouts already assume.
func ConfirmElapsedLessons() {
	log.Println("Running job: ConfirmElapsedLessons...")

	cutoff := time.Now().Add(-15 * time.Minute)

	var elapsed []models.Lesson
	err := database.DB.
		Where("status = ? AND scheduled_at + (duration_minutes * interval '1 minute') < ?", models.LessonScheduled, cutoff).
		Find(&elapsed).Error
	if err != nil {
		log.Printf("Error checking for elapsed lessons: %v", err)
		return
	}

	if len(elapsed) == 0 {
		return
	}

	for _, lesson := range elapsed {
		lesson.Status = models.LessonConfirmed
		database.DB.Save(&lesson)
	}

	log.Printf("Marked %d lesson(s) as confirmed.", len(elapsed))
}
