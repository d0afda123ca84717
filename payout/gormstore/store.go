// Package gormstore backs the payout engine with the application's Postgres
// database. The no-double-payment invariant is carried by the partial unique
// index on payout_line_items (lesson_id) WHERE NOT released, created in
// database.Migrate; a racing create hits the index and rolls back whole.
package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/linguadesk/backoffice/models"
	"github.com/linguadesk/backoffice/payout"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ---- payout.LessonSource ----

func (s *Store) ListLessonsForTeacherInRange(ctx context.Context, orgID, teacherID uuid.UUID, start, end time.Time) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where("organization_id = ? AND teacher_id = ? AND scheduled_at BETWEEN ? AND ?", orgID, teacherID, start, end).
		Order("scheduled_at asc").
		Find(&lessons).Error
	return lessons, err
}

// ---- payout.RateSource ----

func (s *Store) GetTeacherRate(ctx context.Context, orgID, teacherID uuid.UUID) (*payout.RateSnapshot, error) {
	var teacher models.Teacher
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ?", teacherID, orgID).
		First(&teacher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &payout.NotFoundError{Resource: "teacher", ID: teacherID.String()}
	}
	if err != nil {
		return nil, err
	}
	if teacher.HourlyRate == nil {
		return nil, nil
	}
	return &payout.RateSnapshot{HourlyRate: *teacher.HourlyRate, Currency: teacher.Currency}, nil
}

// ---- payout.PolicySource ----

func (s *Store) GetPayoutPolicy(ctx context.Context, orgID uuid.UUID) (payout.Policy, error) {
	var org models.Organization
	err := s.db.WithContext(ctx).First(&org, "id = ?", orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payout.Policy{}, &payout.NotFoundError{Resource: "organization", ID: orgID.String()}
	}
	if err != nil {
		return payout.Policy{}, err
	}
	return payout.Policy{
		Timezone:                    org.Timezone,
		LateCancellationWindowHours: org.LateCancellationWindowHours,
		LateCancellationPercent:     org.LateCancellationPercent,
	}, nil
}

// ---- payout.Store ----

func (s *Store) ClaimedLessonIDs(ctx context.Context, orgID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	claimed := make(map[uuid.UUID]bool)
	if len(lessonIDs) == 0 {
		return claimed, nil
	}

	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.PayoutLineItem{}).
		Joins("JOIN teacher_payouts ON teacher_payouts.id = payout_line_items.payout_id").
		Where("teacher_payouts.organization_id = ? AND payout_line_items.released = false AND payout_line_items.lesson_id IN ?", orgID, lessonIDs).
		Pluck("payout_line_items.lesson_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		claimed[id] = true
	}
	return claimed, nil
}

func (s *Store) CreatePayout(ctx context.Context, p *models.TeacherPayout, items []models.PayoutLineItem) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &payout.ConflictError{
			Message: "one or more lessons were claimed by a concurrent payout; re-run the preview and retry",
		}
	}
	return err
}

func (s *Store) GetPayout(ctx context.Context, orgID, payoutID uuid.UUID) (*models.TeacherPayout, error) {
	var p models.TeacherPayout
	err := s.db.WithContext(ctx).
		Preload("LineItems").
		Where("id = ? AND organization_id = ?", payoutID, orgID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &payout.NotFoundError{Resource: "payout", ID: payoutID.String()}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdatePayoutStatus(ctx context.Context, orgID, payoutID uuid.UUID, status string, paidAt *time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": status}
		if paidAt != nil {
			updates["paid_at"] = paidAt
		}

		result := tx.Model(&models.TeacherPayout{}).
			Where("id = ? AND organization_id = ?", payoutID, orgID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &payout.NotFoundError{Resource: "payout", ID: payoutID.String()}
		}

		if status == models.PayoutCancelled {
			if err := tx.Model(&models.PayoutLineItem{}).
				Where("payout_id = ?", payoutID).
				Update("released", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeletePayout(ctx context.Context, orgID, payoutID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payout_id = ?", payoutID).Delete(&models.PayoutLineItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND organization_id = ?", payoutID, orgID).Delete(&models.TeacherPayout{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &payout.NotFoundError{Resource: "payout", ID: payoutID.String()}
		}
		return nil
	})
}

func (s *Store) ListPayouts(ctx context.Context, orgID, teacherID uuid.UUID) ([]models.TeacherPayout, error) {
	var payouts []models.TeacherPayout
	err := s.db.WithContext(ctx).
		Preload("LineItems").
		Where("organization_id = ? AND teacher_id = ?", orgID, teacherID).
		Order("created_at desc").
		Find(&payouts).Error
	return payouts, err
}

func (s *Store) LatestPayout(ctx context.Context, orgID, teacherID uuid.UUID) (*models.TeacherPayout, error) {
	var p models.TeacherPayout
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND teacher_id = ?", orgID, teacherID).
		Order("created_at desc").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
