package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

var _ domain.TrackingEventRepository = (*PostgresTrackingEventRepository)(nil)

const eventColumns = `id, habit_id, user_id, occurred_at, period_start, period_end, count, goal,
		frequency_period, version, created_at, updated_at, deleted_at`

type PostgresTrackingEventRepository struct {
	db *sqlx.DB
}

func NewPostgresTrackingEventRepository(db *sqlx.DB) *PostgresTrackingEventRepository {
	return &PostgresTrackingEventRepository{db: db}
}

func (r *PostgresTrackingEventRepository) Create(ctx context.Context, event *domain.TrackingEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	query := `
		INSERT INTO tracking_events (
			id, habit_id, user_id,
			occurred_at, period_start, period_end, count, goal, frequency_period,
			version, created_at, updated_at, deleted_at
		) VALUES (
			:id, :habit_id, :user_id,
			:occurred_at, :period_start, :period_end, :count, :goal, :frequency_period,
			:version, :created_at, :updated_at, :deleted_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		switch sqlState(err) {
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: referenced habit does not exist", domain.ErrHabitNotFound)
		case codeUniqueViolation:
			return domain.ErrEventConflict
		}
		return fmt.Errorf("failed to insert tracking event: %w", err)
	}
	return nil
}

func (r *PostgresTrackingEventRepository) GetByID(ctx context.Context, id string) (*domain.TrackingEvent, error) {
	var event domain.TrackingEvent
	query := `SELECT ` + eventColumns + ` FROM tracking_events WHERE id = $1 AND deleted_at IS NULL`

	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ListByUser treats a zero from or to as unbounded.
func (r *PostgresTrackingEventRepository) ListByUser(ctx context.Context, userID, habitID string, from, to time.Time) ([]*domain.TrackingEvent, error) {
	events := []*domain.TrackingEvent{}

	query := `
		SELECT ` + eventColumns + ` FROM tracking_events
		WHERE user_id = $1
		  AND ($2 = '' OR habit_id = $2)
		  AND ($3::timestamptz IS NULL OR occurred_at >= $3)
		  AND ($4::timestamptz IS NULL OR occurred_at < $4)
		  AND deleted_at IS NULL
		ORDER BY occurred_at ASC`

	if err := r.db.SelectContext(ctx, &events, query, userID, habitID, nullTime(from), nullTime(to)); err != nil {
		return nil, fmt.Errorf("list tracking events: %w", err)
	}
	return events, nil
}

// Update expects event.Version to already hold the new version; the row is
// written only if it is still at the previous one.
func (r *PostgresTrackingEventRepository) Update(ctx context.Context, event *domain.TrackingEvent) error {
	query := `
		UPDATE tracking_events
		SET count = :count,
		    goal = :goal,
		    occurred_at = :occurred_at,
		    period_start = :period_start,
		    period_end = :period_end,
		    version = :version,
		    updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1
		  AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		exists, err := r.exists(ctx, event.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrEventNotFound
		}
		return domain.ErrEventConflict
	}

	return nil
}

func (r *PostgresTrackingEventRepository) Delete(ctx context.Context, id string, userID string) error {
	now := time.Now().UTC()

	query := `
		UPDATE tracking_events
		SET deleted_at = $1,
		    updated_at = $1,
		    version = version + 1
		WHERE id = $2
		  AND user_id = $3
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

func (r *PostgresTrackingEventRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.TrackingEvent, error) {
	events := []*domain.TrackingEvent{}

	query := `
		SELECT ` + eventColumns + ` FROM tracking_events
		WHERE user_id = $1
		  AND updated_at > $2
		ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &events, query, userID, since); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresTrackingEventRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM tracking_events WHERE id = $1 AND deleted_at IS NULL", id)
	return count > 0, err
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
