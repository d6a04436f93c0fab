package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// RecurringScheduleRepository implements ports.RecurringScheduleStore
type RecurringScheduleRepository struct {
	db ports.DBPort
}

var _ ports.RecurringScheduleStore = (*RecurringScheduleRepository)(nil)

// NewRecurringScheduleRepository creates a new recurring schedule repository
func NewRecurringScheduleRepository(db ports.DBPort) *RecurringScheduleRepository {
	return &RecurringScheduleRepository{db: db}
}

const scheduleColumns = `id, token_id, routing_number, account_last4, account_type, frequency, status,
	amount, currency, description, metadata, start_date, end_date, max_payments,
	payments_processed, next_payment_date, created_at, updated_at`

func (r *RecurringScheduleRepository) Create(ctx context.Context, s *domain.RecurringSchedule) error {
	metadata, err := marshalJSON(metadataOrEmpty(s.Metadata))
	if err != nil {
		return err
	}

	_, err = r.db.GetDB().Exec(ctx, `
		INSERT INTO ach_recurring_schedules (`+scheduleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		s.ID, s.TokenID, s.RoutingNumber, s.AccountLast4, string(s.AccountType), string(s.Frequency),
		string(s.Status), s.Amount, s.Currency, s.Description, metadata, s.StartDate,
		nullTimestamptz(s.EndDate), nullInt4(s.MaxPayments), s.PaymentsProcessed,
		s.NextPaymentDate, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.WrapError(domain.ErrorCodeDatabaseError, "recurring schedule already exists", err)
		}
		return fmt.Errorf("insert recurring schedule: %w", err)
	}
	return nil
}

func (r *RecurringScheduleRepository) GetByID(ctx context.Context, id string) (*domain.RecurringSchedule, error) {
	row := r.db.GetDB().QueryRow(ctx, `SELECT `+scheduleColumns+` FROM ach_recurring_schedules WHERE id = $1`, id)
	s, err := scanSchedule(row)
	if isNoRows(err) {
		return nil, domain.NewDomainError(domain.ErrorCodeScheduleNotFound, "recurring schedule not found").
			WithDetail("subscription_id", id)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Update persists the mutable schedule state
func (r *RecurringScheduleRepository) Update(ctx context.Context, s *domain.RecurringSchedule) error {
	tag, err := r.db.GetDB().Exec(ctx, `
		UPDATE ach_recurring_schedules
		SET status = $2, payments_processed = $3, next_payment_date = $4, updated_at = $5
		WHERE id = $1`,
		s.ID, string(s.Status), s.PaymentsProcessed, s.NextPaymentDate, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update recurring schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewDomainError(domain.ErrorCodeScheduleNotFound, "recurring schedule not found").
			WithDetail("subscription_id", s.ID)
	}
	return nil
}

func (r *RecurringScheduleRepository) ListDue(ctx context.Context, asOf time.Time, limit int) ([]*domain.RecurringSchedule, error) {
	rows, err := r.db.GetDB().Query(ctx, `
		SELECT `+scheduleColumns+`
		FROM ach_recurring_schedules
		WHERE status = 'active' AND next_payment_date <= $1
		  AND (end_date IS NULL OR next_payment_date <= end_date)
		  AND (max_payments IS NULL OR payments_processed < max_payments)
		ORDER BY next_payment_date
		LIMIT $2`, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("list due schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*domain.RecurringSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due schedules: %w", err)
	}
	return schedules, nil
}

func scanSchedule(row pgx.Row) (*domain.RecurringSchedule, error) {
	var (
		s                              domain.RecurringSchedule
		accountType, frequency, status string
		metadata                       []byte
		endDate                        pgtype.Timestamptz
		maxPayments                    pgtype.Int4
	)
	err := row.Scan(&s.ID, &s.TokenID, &s.RoutingNumber, &s.AccountLast4, &accountType, &frequency, &status,
		&s.Amount, &s.Currency, &s.Description, &metadata, &s.StartDate, &endDate, &maxPayments,
		&s.PaymentsProcessed, &s.NextPaymentDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scan recurring schedule: %w", err)
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &s.Metadata); err != nil {
			return nil, fmt.Errorf("decode schedule metadata %s: %w", s.ID, err)
		}
	}
	s.AccountType = domain.AccountType(accountType)
	s.Frequency = domain.Frequency(frequency)
	s.Status = domain.ScheduleStatus(status)
	s.EndDate = timePtr(endDate)
	s.MaxPayments = intPtr(maxPayments)
	return &s, nil
}

func metadataOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
