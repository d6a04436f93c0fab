package ports

import (
	"context"
	"time"

	"github.com/kevin07696/ach-processor/internal/domain"
)

// RecurringScheduleStore persists recurring ACH schedules. Execution of due
// schedules belongs to an external scheduler.
type RecurringScheduleStore interface {
	Create(ctx context.Context, schedule *domain.RecurringSchedule) error
	GetByID(ctx context.Context, id string) (*domain.RecurringSchedule, error)
	Update(ctx context.Context, schedule *domain.RecurringSchedule) error
	ListDue(ctx context.Context, asOf time.Time, limit int) ([]*domain.RecurringSchedule, error)
}
