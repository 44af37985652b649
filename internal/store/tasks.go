package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/planboard/internal/tasks"
)

var _ tasks.Backend = (*Store)(nil)

const taskColumns = `id, action_id, description, responsible, sector, status, start_date, end_date, sort_order, follow_up, created_at, updated_at`

// Fetch returns the persisted tasks of one action ordered by position.
func (s *Store) Fetch(ctx context.Context, actionID string) ([]tasks.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM sub_tasks WHERE action_id = ? ORDER BY sort_order, created_at`, actionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []tasks.Task
	for rows.Next() {
		var t tasks.Task
		var status, createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.ActionID, &t.Description, &t.Responsible, &t.Sector, &status,
			&t.StartDate, &t.EndDate, &t.Order, &t.FollowUp, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Status = tasks.SubStatus(status)
		if !t.Status.Valid() {
			return nil, fmt.Errorf("task %s: invalid status %q", t.ID, status)
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("task %s: created_at: %w", t.ID, err)
		}
		if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("task %s: updated_at: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Apply replaces the stored list of m.ActionID with m.Tasks in one
// transaction.
func (s *Store) Apply(ctx context.Context, m tasks.Mutation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", m.Kind, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sub_tasks WHERE action_id = ?`, m.ActionID); err != nil {
		return fmt.Errorf("%s task: %w", m.Kind, err)
	}
	if err := insertTasks(ctx, tx, m.ActionID, m.Tasks); err != nil {
		return fmt.Errorf("%s task: %w", m.Kind, err)
	}
	return tx.Commit()
}

// SeedTasks inserts seed lists for actions that have no stored tasks yet.
// It runs once per database; later calls are no-ops.
func (s *Store) SeedTasks(ctx context.Context, seed map[string][]tasks.Task) error {
	const seededKey = "tasks_seeded"
	if v, err := s.GetSetting(seededKey); err == nil && v == "true" {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for actionID, list := range seed {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sub_tasks WHERE action_id = ?`, actionID).Scan(&n); err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}
		if n > 0 {
			continue
		}
		if err := insertTasks(ctx, tx, actionID, list); err != nil {
			return fmt.Errorf("seed %s: %w", actionID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, 'true') ON CONFLICT(key) DO UPDATE SET value = excluded.value`, seededKey,
	); err != nil {
		return fmt.Errorf("mark seeded: %w", err)
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTasks(ctx context.Context, db execer, actionID string, list []tasks.Task) error {
	for _, t := range list {
		_, err := db.ExecContext(ctx,
			`INSERT INTO sub_tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, actionID, t.Description, t.Responsible, t.Sector, string(t.Status),
			t.StartDate, t.EndDate, t.Order, t.FollowUp,
			t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return nil
}
