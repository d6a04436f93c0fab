package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// ScheduleStore is an in-process RecurringScheduleStore
type ScheduleStore struct {
	schedules map[string]*domain.RecurringSchedule
	mu        sync.RWMutex
}

var _ ports.RecurringScheduleStore = (*ScheduleStore)(nil)

// NewScheduleStore creates an empty store
func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{schedules: make(map[string]*domain.RecurringSchedule)}
}

func (s *ScheduleStore) Create(_ context.Context, schedule *domain.RecurringSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[schedule.ID]; exists {
		return domain.NewDomainError(domain.ErrorCodeDatabaseError, "recurring schedule already exists")
	}
	s.schedules[schedule.ID] = cloneSchedule(schedule)
	return nil
}

func (s *ScheduleStore) GetByID(_ context.Context, id string) (*domain.RecurringSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.schedules[id]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeScheduleNotFound, "recurring schedule not found")
	}
	return cloneSchedule(schedule), nil
}

func (s *ScheduleStore) Update(_ context.Context, schedule *domain.RecurringSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[schedule.ID]; !ok {
		return domain.NewDomainError(domain.ErrorCodeScheduleNotFound, "recurring schedule not found")
	}
	s.schedules[schedule.ID] = cloneSchedule(schedule)
	return nil
}

func (s *ScheduleStore) ListDue(_ context.Context, asOf time.Time, limit int) ([]*domain.RecurringSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*domain.RecurringSchedule
	for _, schedule := range s.schedules {
		if schedule.IsDue(asOf) {
			due = append(due, cloneSchedule(schedule))
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextPaymentDate.Before(due[j].NextPaymentDate)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func cloneSchedule(s *domain.RecurringSchedule) *domain.RecurringSchedule {
	c := *s
	if s.Metadata != nil {
		c.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}
	if s.EndDate != nil {
		end := *s.EndDate
		c.EndDate = &end
	}
	if s.MaxPayments != nil {
		n := *s.MaxPayments
		c.MaxPayments = &n
	}
	return &c
}
