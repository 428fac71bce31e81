package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/grouptick/grouptick/go/internal/apperr"
	"github.com/grouptick/grouptick/go/internal/models"
	"github.com/grouptick/grouptick/go/internal/sqlutil"
)

// Repository implements group data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const pqUniqueViolation = "23505"

// CreateGroup inserts a group and its membership rows in one transaction.
// Name uniqueness is enforced by the unique index on groups.name; a
// violation surfaces as ErrConflict so concurrent creates cannot race past
// the earlier read-side check.
func (r *Repository) CreateGroup(ctx context.Context, g *models.Group, memberIDs []string) error {
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO groups (id, name) VALUES ($1, $2)`,
			g.ID, g.Name,
		)
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}

		for _, memberID := range memberIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO members (id, group_id) VALUES ($1, $2)`,
				memberID, g.ID,
			); err != nil {
				return fmt.Errorf("insert member %s: %w", memberID, err)
			}
		}
		return nil
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("group name %q already exists: %w", g.Name, apperr.ErrConflict)
		}
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group with its membership rows
func (r *Repository) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	g := &models.Group{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM groups WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id FROM members WHERE group_id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.GroupID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		g.Members = append(g.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return g, nil
}

// ListGroupsForMember lists every group the member belongs to, with counts.
// The membership filter runs in the query, not in the caller.
func (r *Repository) ListGroupsForMember(ctx context.Context, memberID string) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.created_at,
		       (SELECT COUNT(*) FROM members m2 WHERE m2.group_id = g.id),
		       (SELECT COUNT(*) FROM timers t WHERE t.group_id = g.id)
		FROM groups g
		JOIN members m ON m.group_id = g.id
		WHERE m.id = $1
		ORDER BY g.created_at`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.MemberCount, &s.TimerCount); err != nil {
			return nil, fmt.Errorf("failed to scan group summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return summaries, nil
}
