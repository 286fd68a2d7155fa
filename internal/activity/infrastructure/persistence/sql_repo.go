package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/jobflow/internal/activity/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLActivityRepository appends entries to the activity_log table.
type SQLActivityRepository struct {
	conn database.Connection
}

// NewSQLActivityRepository creates an activity repository.
func NewSQLActivityRepository(conn database.Connection) *SQLActivityRepository {
	return &SQLActivityRepository{conn: conn}
}

// Append inserts entries using the transaction in ctx when present.
func (r *SQLActivityRepository) Append(ctx context.Context, entries ...*domain.Entry) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := database.Rebind(r.conn.Driver(), `INSERT INTO activity_log
		(id, project_id, actor_id, action, description, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	for _, e := range entries {
		details, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("encode activity details: %w", err)
		}
		_, err = exec.Exec(ctx, query,
			e.ID.String(),
			e.ProjectID.String(),
			e.ActorID.String(),
			string(e.Action),
			e.Description,
			string(details),
			database.FormatTime(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("append activity %s: %w", e.Action, err)
		}
	}
	return nil
}

// ListByProject returns a project's entries oldest first.
func (r *SQLActivityRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.Entry, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := `SELECT id, project_id, actor_id, action, description, details, created_at
		FROM activity_log WHERE project_id = ? ORDER BY created_at, id`
	args := []any{projectID.String()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := exec.Query(ctx, database.Rebind(r.conn.Driver(), query), args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Entry
	for rows.Next() {
		var (
			id, pid, actor, action, description, details, createdAt string
		)
		if err := rows.Scan(&id, &pid, &actor, &action, &description, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entry := &domain.Entry{
			Action:      domain.Action(action),
			Description: description,
		}
		if entry.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if entry.ProjectID, err = uuid.Parse(pid); err != nil {
			return nil, err
		}
		if entry.ActorID, err = uuid.Parse(actor); err != nil {
			return nil, err
		}
		if entry.CreatedAt, err = database.ParseTime(createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(details), &entry.Details); err != nil {
			return nil, fmt.Errorf("decode activity details: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

var _ domain.Repository = (*SQLActivityRepository)(nil)
