// Package inmem is an in-memory implementation of the payout engine's
// storage and source interfaces, used by tests and local development. It
// enforces the same one-active-claim-per-lesson invariant the Postgres
// partial unique index provides.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/linguadesk/backoffice/models"
	"github.com/linguadesk/backoffice/payout"
)

type Store struct {
	mu sync.Mutex

	lessons  map[uuid.UUID][]models.Lesson // keyed by teacher id
	rates    map[uuid.UUID]*payout.RateSnapshot
	teachers map[uuid.UUID]bool
	policies map[uuid.UUID]payout.Policy

	payouts map[uuid.UUID]*models.TeacherPayout
	items   map[uuid.UUID][]models.PayoutLineItem // keyed by payout id
	claims  map[uuid.UUID]uuid.UUID              // lesson id -> payout id
	seq     int64
	order   map[uuid.UUID]int64 // payout id -> creation order
}

func New() *Store {
	return &Store{
		lessons:  make(map[uuid.UUID][]models.Lesson),
		rates:    make(map[uuid.UUID]*payout.RateSnapshot),
		teachers: make(map[uuid.UUID]bool),
		policies: make(map[uuid.UUID]payout.Policy),
		payouts:  make(map[uuid.UUID]*models.TeacherPayout),
		items:    make(map[uuid.UUID][]models.PayoutLineItem),
		claims:   make(map[uuid.UUID]uuid.UUID),
		order:    make(map[uuid.UUID]int64),
	}
}

// ---- seeding helpers ----

func (s *Store) AddLesson(lesson models.Lesson) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons[lesson.TeacherID] = append(s.lessons[lesson.TeacherID], lesson)
}

// AddTeacher registers a teacher; rate may be nil for a teacher with no
// configured hourly rate.
func (s *Store) AddTeacher(teacherID uuid.UUID, rate *payout.RateSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teachers[teacherID] = true
	s.rates[teacherID] = rate
}

func (s *Store) SetPolicy(orgID uuid.UUID, policy payout.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[orgID] = policy
}

// ---- payout.LessonSource ----

func (s *Store) ListLessonsForTeacherInRange(_ context.Context, orgID, teacherID uuid.UUID, start, end time.Time) ([]models.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Lesson
	for _, l := range s.lessons[teacherID] {
		if l.OrganizationID != orgID {
			continue
		}
		if l.ScheduledAt.Before(start) || l.ScheduledAt.After(end) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// ---- payout.RateSource ----

func (s *Store) GetTeacherRate(_ context.Context, _, teacherID uuid.UUID) (*payout.RateSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.teachers[teacherID] {
		return nil, &payout.NotFoundError{Resource: "teacher", ID: teacherID.String()}
	}
	return s.rates[teacherID], nil
}

// ---- payout.PolicySource ----

func (s *Store) GetPayoutPolicy(_ context.Context, orgID uuid.UUID) (payout.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, ok := s.policies[orgID]
	if !ok {
		return payout.Policy{}, &payout.NotFoundError{Resource: "organization", ID: orgID.String()}
	}
	return policy, nil
}

// ---- payout.Store ----

func (s *Store) ClaimedLessonIDs(_ context.Context, orgID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claimed := make(map[uuid.UUID]bool)
	for _, id := range lessonIDs {
		if payoutID, ok := s.claims[id]; ok {
			if p := s.payouts[payoutID]; p != nil && p.OrganizationID == orgID {
				claimed[id] = true
			}
		}
	}
	return claimed, nil
}

func (s *Store) CreatePayout(_ context.Context, p *models.TeacherPayout, items []models.PayoutLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check every claim before writing anything, mirroring the all-or-
	// nothing behavior of the relational transaction.
	for _, item := range items {
		if _, taken := s.claims[item.LessonID]; taken {
			return &payout.ConflictError{
				Message: "lesson " + item.LessonID.String() + " is already claimed by another payout",
			}
		}
	}

	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.LineItems = nil
	s.payouts[cp.ID] = &cp
	s.items[cp.ID] = append([]models.PayoutLineItem(nil), items...)
	for _, item := range items {
		s.claims[item.LessonID] = cp.ID
	}
	s.seq++
	s.order[cp.ID] = s.seq
	return nil
}

func (s *Store) GetPayout(_ context.Context, orgID, payoutID uuid.UUID) (*models.TeacherPayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(orgID, payoutID)
}

func (s *Store) getLocked(orgID, payoutID uuid.UUID) (*models.TeacherPayout, error) {
	p, ok := s.payouts[payoutID]
	if !ok || p.OrganizationID != orgID {
		return nil, &payout.NotFoundError{Resource: "payout", ID: payoutID.String()}
	}
	cp := *p
	cp.LineItems = append([]models.PayoutLineItem(nil), s.items[payoutID]...)
	return &cp, nil
}

func (s *Store) UpdatePayoutStatus(_ context.Context, orgID, payoutID uuid.UUID, status string, paidAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payouts[payoutID]
	if !ok || p.OrganizationID != orgID {
		return &payout.NotFoundError{Resource: "payout", ID: payoutID.String()}
	}

	p.Status = status
	if paidAt != nil {
		p.PaidAt = paidAt
	}
	p.UpdatedAt = time.Now()

	if status == models.PayoutCancelled {
		items := s.items[payoutID]
		for i := range items {
			items[i].Released = true
			delete(s.claims, items[i].LessonID)
		}
	}
	return nil
}

func (s *Store) DeletePayout(_ context.Context, orgID, payoutID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payouts[payoutID]
	if !ok || p.OrganizationID != orgID {
		return &payout.NotFoundError{Resource: "payout", ID: payoutID.String()}
	}

	for _, item := range s.items[payoutID] {
		if s.claims[item.LessonID] == payoutID {
			delete(s.claims, item.LessonID)
		}
	}
	delete(s.items, payoutID)
	delete(s.payouts, payoutID)
	delete(s.order, payoutID)
	return nil
}

func (s *Store) ListPayouts(_ context.Context, orgID, teacherID uuid.UUID) ([]models.TeacherPayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.TeacherPayout
	for id, p := range s.payouts {
		if p.OrganizationID != orgID || p.TeacherID != teacherID {
			continue
		}
		cp, _ := s.getLocked(orgID, id)
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out, nil
}

func (s *Store) LatestPayout(_ context.Context, orgID, teacherID uuid.UUID) (*models.TeacherPayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *models.TeacherPayout
	var latestOrder int64 = -1
	for id, p := range s.payouts {
		if p.OrganizationID != orgID || p.TeacherID != teacherID {
			continue
		}
		if s.order[id] > latestOrder {
			latestOrder = s.order[id]
			cp, _ := s.getLocked(orgID, id)
			latest = cp
		}
	}
	return latest, nil
}
