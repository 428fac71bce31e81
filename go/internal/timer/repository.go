package timer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/grouptick/grouptick/go/internal/apperr"
	"github.com/grouptick/grouptick/go/internal/models"
	"github.com/grouptick/grouptick/go/internal/sqlutil"
)

// Repository implements timer data access operations. Mutations are single
// UPDATE ... RETURNING statements so concurrent writers resolve by
// last-write-wins at the row, and the returned record reflects exactly what
// was persisted.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new timer repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const timerColumns = `id, group_id, label, length_sec, starts_at, paused_at, total_paused_ms`

// CreateTimer inserts a new timer
func (r *Repository) CreateTimer(ctx context.Context, t *models.Timer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO timers (id, group_id, label, length_sec, starts_at, total_paused_ms)
		 VALUES ($1, $2, $3, $4, $5, 0)`,
		t.ID, t.GroupID, t.Label, t.LengthSec, t.StartsAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create timer: %w", err)
	}
	return nil
}

// GetTimer retrieves a timer scoped to its owning group. A timer that exists
// under a different group is reported as not found.
func (r *Repository) GetTimer(ctx context.Context, groupID, timerID string) (*models.Timer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+timerColumns+` FROM timers WHERE id = $1 AND group_id = $2`,
		timerID, groupID,
	)
	t, err := scanTimer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timer %s in group %s: %w", timerID, groupID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get timer: %w", err)
	}
	return t, nil
}

// Pause stamps the pause instant
func (r *Repository) Pause(ctx context.Context, timerID string, pausedAt time.Time) (*models.Timer, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE timers SET paused_at = $2 WHERE id = $1 RETURNING `+timerColumns,
		timerID, pausedAt,
	)
	return r.scanMutation(row, timerID)
}

// Resume folds the completed pause interval into the running total and
// clears the pause instant. The increment happens in the statement so two
// racing resumes cannot double-count a stale read.
func (r *Repository) Resume(ctx context.Context, timerID string, pausedMs int64) (*models.Timer, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE timers SET paused_at = NULL, total_paused_ms = total_paused_ms + $2
		 WHERE id = $1 RETURNING `+timerColumns,
		timerID, pausedMs,
	)
	return r.scanMutation(row, timerID)
}

// Reset moves the logical start to the given instant and clears all pause
// accounting
func (r *Repository) Reset(ctx context.Context, timerID string, startsAt time.Time) (*models.Timer, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE timers SET starts_at = $2, paused_at = NULL, total_paused_ms = 0
		 WHERE id = $1 RETURNING `+timerColumns,
		timerID, startsAt,
	)
	return r.scanMutation(row, timerID)
}

// AddTime extends the timer's length, touching nothing else
func (r *Repository) AddTime(ctx context.Context, timerID string, incrementSec int64) (*models.Timer, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE timers SET length_sec = length_sec + $2 WHERE id = $1 RETURNING `+timerColumns,
		timerID, incrementSec,
	)
	return r.scanMutation(row, timerID)
}

// DeleteTimer removes a timer permanently
func (r *Repository) DeleteTimer(ctx context.Context, timerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timers WHERE id = $1`, timerID)
	if err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("timer %s: %w", timerID, apperr.ErrNotFound)
	}
	return nil
}

// ListTimersForGroup lists a group's timers ordered by start instant, ties
// broken by insertion order
func (r *Repository) ListTimersForGroup(ctx context.Context, groupID string) ([]models.Timer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+timerColumns+` FROM timers WHERE group_id = $1 ORDER BY starts_at, created_seq`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list timers: %w", err)
	}
	defer rows.Close()

	var timers []models.Timer
	for rows.Next() {
		t, err := scanTimer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timer: %w", err)
		}
		timers = append(timers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate timers: %w", err)
	}

	return timers, nil
}

func (r *Repository) scanMutation(row *sql.Row, timerID string) (*models.Timer, error) {
	t, err := scanTimer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timer %s: %w", timerID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update timer: %w", err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTimer(s scanner) (*models.Timer, error) {
	var t models.Timer
	var pausedAt sql.NullTime
	if err := s.Scan(&t.ID, &t.GroupID, &t.Label, &t.LengthSec, &t.StartsAt, &pausedAt, &t.TotalPausedMs); err != nil {
		return nil, err
	}
	t.PausedAt = sqlutil.FromSqlTime(pausedAt)
	return &t, nil
}
