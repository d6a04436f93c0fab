package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
)

// DefaultClaimLease is how long a claimed message stays invisible to other dispatchers
const DefaultClaimLease = 5 * time.Minute

// OutboxRepository stores queued payments and dead letters in PostgreSQL
type OutboxRepository struct {
	db    ports.DBPort
	lease time.Duration
}

var _ ports.OutboxRepository = (*OutboxRepository)(nil)

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db ports.DBPort) *OutboxRepository {
	return &OutboxRepository{db: db, lease: DefaultClaimLease}
}

const outboxColumns = `id, payload, status, attempts, max_retries, last_error, next_attempt_at, created_at, updated_at`

func (r *OutboxRepository) Enqueue(ctx context.Context, msg *domain.OutboxMessage) error {
	payload, err := marshalJSON(msg.Payload)
	if err != nil {
		return err
	}

	_, err = r.db.GetDB().Exec(ctx, `
		INSERT INTO ach_outbox_messages
			(id, transaction_id, payload, status, attempts, max_retries, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.Payload.TransactionID, payload, string(msg.Status),
		msg.Attempts, msg.MaxRetries, msg.NextAttemptAt, msg.CreatedAt, msg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// ClaimDue leases due rows with SKIP LOCKED so concurrent dispatchers never
// deliver the same message at once. A crashed dispatcher's lease expires and
// the message becomes due again.
func (r *OutboxRepository) ClaimDue(ctx context.Context, asOf time.Time, limit int) ([]*domain.OutboxMessage, error) {
	rows, err := r.db.GetDB().Query(ctx, `
		UPDATE ach_outbox_messages
		SET next_attempt_at = $3, updated_at = $1
		WHERE id IN (
			SELECT id FROM ach_outbox_messages
			WHERE status = 'pending' AND next_attempt_at <= $1
			ORDER BY next_attempt_at, created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+outboxColumns,
		asOf, limit, asOf.Add(r.lease))
	if err != nil {
		return nil, fmt.Errorf("claim outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.OutboxMessage
	for rows.Next() {
		msg, err := scanOutboxMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox messages: %w", err)
	}
	return messages, nil
}

func scanOutboxMessage(row pgx.Row) (*domain.OutboxMessage, error) {
	var (
		msg       domain.OutboxMessage
		payload   []byte
		status    string
		lastError pgtype.Text
	)
	if err := row.Scan(&msg.ID, &payload, &status, &msg.Attempts, &msg.MaxRetries, &lastError,
		&msg.NextAttemptAt, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan outbox message: %w", err)
	}
	if err := json.Unmarshal(payload, &msg.Payload); err != nil {
		return nil, fmt.Errorf("decode outbox payload %s: %w", msg.ID, err)
	}
	msg.Status = domain.OutboxStatus(status)
	msg.LastError = lastError.String
	return &msg, nil
}

func (r *OutboxRepository) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.GetDB().Exec(ctx, `
		UPDATE ach_outbox_messages
		SET status = 'delivered', attempts = attempts + 1, last_error = NULL, updated_at = $2
		WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark outbox message delivered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return outboxNotFound(id)
	}
	return nil
}

func (r *OutboxRepository) MarkRetry(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string) error {
	tag, err := r.db.GetDB().Exec(ctx, `
		UPDATE ach_outbox_messages
		SET attempts = $2, next_attempt_at = $3, last_error = $4, updated_at = now()
		WHERE id = $1 AND status = 'pending'`, id, attempts, nextAttemptAt, nullText(lastErr))
	if err != nil {
		return fmt.Errorf("schedule outbox retry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return outboxNotFound(id)
	}
	return nil
}

func (r *OutboxRepository) MoveToDeadLetter(ctx context.Context, msg *domain.OutboxMessage, reason string, at time.Time) error {
	payload, err := marshalJSON(msg.Payload)
	if err != nil {
		return err
	}

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE ach_outbox_messages
			SET status = 'dead_lettered', attempts = $2, last_error = $3, updated_at = $4
			WHERE id = $1`, msg.ID, msg.Attempts, reason, at)
		if err != nil {
			return fmt.Errorf("mark outbox message dead-lettered: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return outboxNotFound(msg.ID)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO ach_dead_letters (id, message_id, transaction_id, payload, reason, attempts, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), msg.ID, msg.Payload.TransactionID, payload, reason, msg.Attempts, at); err != nil {
			return fmt.Errorf("insert dead letter: %w", err)
		}
		return nil
	})
}

func (r *OutboxRepository) InsertDeadLetter(ctx context.Context, dl *domain.DeadLetter) error {
	payload, err := marshalJSON(dl.Payload)
	if err != nil {
		return err
	}

	_, err = r.db.GetDB().Exec(ctx, `
		INSERT INTO ach_dead_letters (id, message_id, transaction_id, payload, reason, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		dl.ID, nullText(dl.MessageID), dl.Payload.TransactionID, payload, dl.Reason, dl.Attempts, dl.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dead letter: %w", err)
	}
	return nil
}

func (r *OutboxRepository) ListDeadLetters(ctx context.Context, limit int) ([]*domain.DeadLetter, error) {
	rows, err := r.db.GetDB().Query(ctx, `
		SELECT id, message_id, payload, reason, attempts, created_at
		FROM ach_dead_letters
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	defer rows.Close()

	var letters []*domain.DeadLetter
	for rows.Next() {
		var (
			dl        domain.DeadLetter
			messageID pgtype.Text
			payload   []byte
		)
		if err := rows.Scan(&dl.ID, &messageID, &payload, &dl.Reason, &dl.Attempts, &dl.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dead letter: %w", err)
		}
		if err := json.Unmarshal(payload, &dl.Payload); err != nil {
			return nil, fmt.Errorf("decode dead letter payload %s: %w", dl.ID, err)
		}
		dl.MessageID = messageID.String
		letters = append(letters, &dl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dead letters: %w", err)
	}
	return letters, nil
}

func (r *OutboxRepository) Requeue(ctx context.Context, deadLetterID string, msg *domain.OutboxMessage) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var payload []byte
		err := tx.QueryRow(ctx, `
			DELETE FROM ach_dead_letters WHERE id = $1 RETURNING payload`, deadLetterID).Scan(&payload)
		if isNoRows(err) {
			return domain.NewDomainError(domain.ErrorCodeOutboxMessageNotFound, "dead letter not found").
				WithDetail("dead_letter_id", deadLetterID)
		}
		if err != nil {
			return fmt.Errorf("remove dead letter: %w", err)
		}

		if err := json.Unmarshal(payload, &msg.Payload); err != nil {
			return fmt.Errorf("decode dead letter payload %s: %w", deadLetterID, err)
		}
		msg.MaxRetries = msg.Payload.MaxRetries

		if _, err := tx.Exec(ctx, `
			INSERT INTO ach_outbox_messages
				(id, transaction_id, payload, status, attempts, max_retries, next_attempt_at, created_at, updated_at)
			VALUES ($1, $2, $3, 'pending', 0, $4, $5, $6, $7)`,
			msg.ID, msg.Payload.TransactionID, payload, msg.MaxRetries,
			msg.NextAttemptAt, msg.CreatedAt, msg.UpdatedAt); err != nil {
			return fmt.Errorf("requeue outbox message: %w", err)
		}
		return nil
	})
}

func outboxNotFound(id string) error {
	return domain.NewDomainError(domain.ErrorCodeOutboxMessageNotFound, "outbox message not found").
		WithDetail("outbox_id", id)
}
