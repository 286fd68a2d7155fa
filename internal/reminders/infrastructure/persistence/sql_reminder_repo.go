// Package persistence stores reminders on SQLite or PostgreSQL.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	notifDomain "github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/internal/reminders/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLReminderRepository implements domain.Repository.
type SQLReminderRepository struct {
	conn database.Connection
}

// NewSQLReminderRepository creates a reminder repository.
func NewSQLReminderRepository(conn database.Connection) *SQLReminderRepository {
	return &SQLReminderRepository{conn: conn}
}

const reminderColumns = `id, created_by, title, message, project_id, trigger_mode, remind_at,
	next_trigger_at, watch_status, delay_minutes, stage_matched_at, repeat_period, status,
	is_active, processing, processing_at, last_error, last_fired_at, fire_count, channel,
	recipients, version, created_at, updated_at`

// pendingFilter selects reminders a sweep may still fire.
const pendingFilter = `status = 'scheduled' AND is_active = TRUE AND processing = FALSE`

func (r *SQLReminderRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts new reminders and updates stored ones under a version check.
func (r *SQLReminderRepository) Save(ctx context.Context, reminder *domain.Reminder) error {
	s := reminder.Snapshot()
	recipients, err := json.Marshal(s.Recipients)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}
	exec := database.ExecutorFromContext(ctx, r.conn)

	if reminder.IsNew() {
		_, err = exec.Exec(ctx, r.q(`INSERT INTO reminders (`+reminderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`),
			s.ID.String(), s.CreatedBy.String(), s.Title, s.Message, nullID(s.ProjectID), string(s.TriggerMode),
			database.FormatNullTime(s.RemindAt), database.FormatNullTime(s.NextTriggerAt), s.WatchStatus, s.DelayMinutes,
			database.FormatNullTime(s.StageMatchedAt), string(s.Repeat), string(s.Status),
			s.IsActive, s.Processing, database.FormatNullTime(s.ProcessingAt), s.LastError,
			database.FormatNullTime(s.LastFiredAt), s.FireCount, string(s.Channel),
			string(recipients), database.FormatTime(s.CreatedAt), database.FormatTime(s.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert reminder %s: %w", s.ID, err)
		}
		reminder.SetVersion(1)
		return nil
	}

	result, err := exec.Exec(ctx, r.q(`UPDATE reminders SET
			title = ?, message = ?, remind_at = ?, next_trigger_at = ?, stage_matched_at = ?,
			repeat_period = ?, status = ?, is_active = ?, processing = ?, processing_at = ?,
			last_error = ?, last_fired_at = ?, fire_count = ?, channel = ?, recipients = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`),
		s.Title, s.Message, database.FormatNullTime(s.RemindAt), database.FormatNullTime(s.NextTriggerAt),
		database.FormatNullTime(s.StageMatchedAt), string(s.Repeat), string(s.Status), s.IsActive, s.Processing,
		database.FormatNullTime(s.ProcessingAt), s.LastError, database.FormatNullTime(s.LastFiredAt), s.FireCount,
		string(s.Channel), string(recipients), database.FormatTime(s.UpdatedAt),
		s.ID.String(), s.Version,
	)
	if err != nil {
		return fmt.Errorf("update reminder %s: %w", s.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reminder %s: %w", s.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s at version %d", domain.ErrStaleReminder, s.ID, s.Version)
	}
	reminder.SetVersion(s.Version + 1)
	return nil
}

// FindByID finds a reminder by its ID.
func (r *SQLReminderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, r.q(`SELECT `+reminderColumns+` FROM reminders WHERE id = ?`), id.String())
	rem, err := scanReminder(row)
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrReminderNotFound, id)
	}
	return rem, err
}

// FindByProject returns every reminder attached to a project.
func (r *SQLReminderRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Reminder, error) {
	return r.list(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE project_id = ? ORDER BY created_at`, projectID.String())
}

// FindByRecipient returns reminders addressed to userID.
func (r *SQLReminderRepository) FindByRecipient(ctx context.Context, userID uuid.UUID, includeFinished bool) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders`
	if !includeFinished {
		query += ` WHERE status = 'scheduled'`
	}
	query += ` ORDER BY created_at`
	all, err := r.list(ctx, query)
	if err != nil {
		return nil, err
	}
	var out []*domain.Reminder
	for _, rem := range all {
		for _, rc := range rem.Recipients() {
			if rc.UserID == userID {
				out = append(out, rem)
				break
			}
		}
	}
	return out, nil
}

// FindUnscheduledStageBased returns stage reminders still waiting for their stage.
func (r *SQLReminderRepository) FindUnscheduledStageBased(ctx context.Context, limit int) ([]*domain.Reminder, error) {
	return r.list(ctx, `SELECT `+reminderColumns+` FROM reminders
		WHERE trigger_mode = 'stage_based' AND status = 'scheduled' AND is_active = TRUE
			AND next_trigger_at IS NULL
		ORDER BY created_at LIMIT ?`, limit)
}

// FindDue returns unclaimed reminders whose trigger time has passed.
func (r *SQLReminderRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	return r.list(ctx, `SELECT `+reminderColumns+` FROM reminders
		WHERE `+pendingFilter+` AND next_trigger_at IS NOT NULL AND next_trigger_at <= ?
		ORDER BY next_trigger_at LIMIT ?`, database.FormatTime(now), limit)
}

// Claim flips processing on for a due reminder. The row must still match
// the version and trigger time the caller read, so only one process wins.
func (r *SQLReminderRepository) Claim(ctx context.Context, reminder *domain.Reminder, now time.Time) (bool, error) {
	s := reminder.Snapshot()
	if s.NextTriggerAt == nil {
		return false, nil
	}
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, r.q(`UPDATE reminders SET
			processing = TRUE, processing_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ? AND `+pendingFilter+` AND next_trigger_at = ?`),
		database.FormatTime(now), database.FormatTime(now),
		s.ID.String(), s.Version, database.FormatTime(*s.NextTriggerAt),
	)
	if err != nil {
		return false, fmt.Errorf("claim reminder %s: %w", s.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	reminder.Claim(now)
	reminder.SetVersion(s.Version + 1)
	return true, nil
}

// ReclaimStale releases claims taken before cutoff by a process that never
// finished them.
func (r *SQLReminderRepository) ReclaimStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, r.q(`UPDATE reminders SET
			processing = FALSE, processing_at = NULL, last_error = 'processing lease expired',
			updated_at = ?, version = version + 1
		WHERE processing = TRUE AND processing_at < ?`),
		database.FormatTime(now), database.FormatTime(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim reminders: %w", err)
	}
	return result.RowsAffected()
}

// NextTriggerAt returns the earliest due time among pending reminders.
func (r *SQLReminderRepository) NextTriggerAt(ctx context.Context) (*time.Time, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	var next sql.NullString
	err := exec.QueryRow(ctx, r.q(`SELECT MIN(next_trigger_at) FROM reminders
		WHERE `+pendingFilter+` AND next_trigger_at IS NOT NULL`)).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("query next trigger: %w", err)
	}
	return database.ParseNullTime(next)
}

func (r *SQLReminderRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Reminder, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func scanReminder(row database.Row) (*domain.Reminder, error) {
	var (
		id, createdBy, title, message            string
		projectID                                sql.NullString
		triggerMode, watchStatus, repeat, status string
		remindAt, nextTriggerAt, stageMatchedAt  sql.NullString
		processingAt, lastFiredAt                sql.NullString
		delayMinutes, fireCount, version         int
		isActive, processing                     bool
		lastError, channel, recipients           string
		createdAt, updatedAt                     string
	)
	err := row.Scan(&id, &createdBy, &title, &message, &projectID, &triggerMode, &remindAt,
		&nextTriggerAt, &watchStatus, &delayMinutes, &stageMatchedAt, &repeat, &status,
		&isActive, &processing, &processingAt, &lastError, &lastFiredAt, &fireCount, &channel,
		&recipients, &version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	s := domain.Snapshot{
		Title:        title,
		Message:      message,
		TriggerMode:  domain.TriggerMode(triggerMode),
		WatchStatus:  watchStatus,
		DelayMinutes: delayMinutes,
		Repeat:       domain.Repeat(repeat),
		Status:       domain.Status(status),
		IsActive:     isActive,
		Processing:   processing,
		LastError:    lastError,
		FireCount:    fireCount,
		Channel:      notifDomain.Channel(channel),
		Version:      version,
	}
	if err := json.Unmarshal([]byte(recipients), &s.Recipients); err != nil {
		return nil, fmt.Errorf("decode recipients of %s: %w", id, err)
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if s.CreatedBy, err = uuid.Parse(createdBy); err != nil {
		return nil, err
	}
	if projectID.Valid && projectID.String != "" {
		if s.ProjectID, err = uuid.Parse(projectID.String); err != nil {
			return nil, err
		}
	}
	for _, f := range []struct {
		dst **time.Time
		src sql.NullString
	}{
		{&s.RemindAt, remindAt},
		{&s.NextTriggerAt, nextTriggerAt},
		{&s.StageMatchedAt, stageMatchedAt},
		{&s.ProcessingAt, processingAt},
		{&s.LastFiredAt, lastFiredAt},
	} {
		if *f.dst, err = database.ParseNullTime(f.src); err != nil {
			return nil, err
		}
	}
	if s.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return domain.RehydrateReminder(s), nil
}

func nullID(id uuid.UUID) sql.NullString {
	if id == uuid.Nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

var _ domain.Repository = (*SQLReminderRepository)(nil)
