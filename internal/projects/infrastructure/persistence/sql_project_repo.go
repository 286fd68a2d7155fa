package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLProjectRepository stores projects on SQLite or PostgreSQL. Scalar
// fields that are filtered on get columns; sub-documents live in the
// JSON state column.
type SQLProjectRepository struct {
	conn database.Connection
}

// NewSQLProjectRepository creates a project repository.
func NewSQLProjectRepository(conn database.Connection) *SQLProjectRepository {
	return &SQLProjectRepository{conn: conn}
}

const projectColumns = `id, order_number, name, project_type, status, lead_id, assistant_id,
	lineage_id, parent_project_id, version_number, is_latest_version, version_state,
	state, version, created_at, updated_at`

// projectState is the JSON shape of the state column.
type projectState struct {
	Hold               domain.Hold                  `json:"hold"`
	Cancellation       domain.Cancellation          `json:"cancellation"`
	Departments        []domain.Department          `json:"departments"`
	Acknowledgements   []domain.Acknowledgement     `json:"acknowledgements"`
	Mockup             domain.Mockup                `json:"mockup"`
	SampleRequired     bool                         `json:"sample_required"`
	SampleApproval     domain.SampleApproval        `json:"sample_approval"`
	Invoice            domain.Invoice               `json:"invoice"`
	Payments           []domain.PaymentVerification `json:"payments"`
	Feedbacks          []domain.Feedback            `json:"feedbacks"`
	GateWatches        []domain.GateWatch           `json:"gate_watches"`
	CorporateEmergency bool                         `json:"corporate_emergency"`
	ReopenReason       string                       `json:"reopen_reason,omitempty"`
}

func (r *SQLProjectRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts new projects and updates stored ones under a revision check.
func (r *SQLProjectRepository) Save(ctx context.Context, project *domain.Project) error {
	s := project.Snapshot()
	state, err := json.Marshal(projectState{
		Hold:               s.Hold,
		Cancellation:       s.Cancellation,
		Departments:        s.Departments,
		Acknowledgements:   s.Acknowledgements,
		Mockup:             s.Mockup,
		SampleRequired:     s.SampleRequired,
		SampleApproval:     s.SampleApproval,
		Invoice:            s.Invoice,
		Payments:           s.Payments,
		Feedbacks:          s.Feedbacks,
		GateWatches:        s.GateWatches,
		CorporateEmergency: s.CorporateEmergency,
		ReopenReason:       s.ReopenReason,
	})
	if err != nil {
		return fmt.Errorf("encode project state: %w", err)
	}
	exec := database.ExecutorFromContext(ctx, r.conn)

	if project.IsNew() {
		_, err = exec.Exec(ctx, r.q(`INSERT INTO projects (`+projectColumns+`, is_on_hold, is_cancelled)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`),
			s.ID.String(), s.OrderNumber, s.Name, string(s.Type), string(s.Status),
			idString(s.LeadID), idString(s.AssistantID),
			s.LineageID.String(), nullID(s.ParentProjectID), s.VersionNumber, s.IsLatestVersion, string(s.VersionState),
			string(state), database.FormatTime(s.CreatedAt), database.FormatTime(s.UpdatedAt),
			s.Hold.IsOnHold, s.Cancellation.IsCancelled,
		)
		if err != nil {
			return r.writeError(s.ID, err)
		}
		project.SetVersion(1)
		return nil
	}

	result, err := exec.Exec(ctx, r.q(`UPDATE projects SET
			order_number = ?, name = ?, project_type = ?, status = ?, lead_id = ?, assistant_id = ?,
			is_on_hold = ?, is_cancelled = ?, lineage_id = ?, parent_project_id = ?, version_number = ?,
			is_latest_version = ?, version_state = ?, state = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`),
		s.OrderNumber, s.Name, string(s.Type), string(s.Status), idString(s.LeadID), idString(s.AssistantID),
		s.Hold.IsOnHold, s.Cancellation.IsCancelled, s.LineageID.String(), nullID(s.ParentProjectID), s.VersionNumber,
		s.IsLatestVersion, string(s.VersionState), string(state), database.FormatTime(s.UpdatedAt),
		s.ID.String(), s.Version,
	)
	if err != nil {
		return r.writeError(s.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project %s: %w", s.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s at revision %d", domain.ErrStaleProject, s.ID, s.Version)
	}
	project.SetVersion(s.Version + 1)
	return nil
}

func (r *SQLProjectRepository) writeError(id uuid.UUID, err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: project %s collides with another revision: %v", domain.ErrLineageConflict, id, err)
	}
	return fmt.Errorf("save project %s: %w", id, err)
}

// FindByID finds a project by its ID.
func (r *SQLProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, r.q(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id.String())
	p, err := scanProject(row)
	if database.IsNoRows(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
	}
	return p, err
}

// FindLineage returns every revision of lineageID ordered by version number.
func (r *SQLProjectRepository) FindLineage(ctx context.Context, lineageID uuid.UUID) ([]*domain.Project, error) {
	return r.list(ctx, `SELECT `+projectColumns+` FROM projects WHERE lineage_id = ? ORDER BY version_number`, lineageID.String())
}

// FindByStatus returns latest revisions in one of statuses.
func (r *SQLProjectRepository) FindByStatus(ctx context.Context, statuses ...domain.Status) ([]*domain.Project, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE is_latest_version = TRUE AND status IN (` + placeholders(len(statuses)) + `)
		ORDER BY created_at`
	return r.list(ctx, query, args...)
}

// ProjectStatuses returns the current status of each existing project in ids.
func (r *SQLProjectRepository) ProjectStatuses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return r.columnByID(ctx, "status", ids)
}

// ProjectTypes returns the project type of each existing project in ids.
func (r *SQLProjectRepository) ProjectTypes(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return r.columnByID(ctx, "project_type", ids)
}

// columnByID reads one text column for each existing project in ids.
// column is always a constant from this file.
func (r *SQLProjectRepository) columnByID(ctx context.Context, column string, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, r.q(`SELECT id, `+column+` FROM projects WHERE id IN (`+placeholders(len(ids))+`)`), args...)
	if err != nil {
		return nil, fmt.Errorf("query project %s: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		out[parsed] = value
	}
	return out, rows.Err()
}

// Delete removes a project.
func (r *SQLProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, r.q(`DELETE FROM projects WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProjectNotFound, id)
	}
	return nil
}

// CountLatest returns how many revisions of lineageID are flagged latest.
func (r *SQLProjectRepository) CountLatest(ctx context.Context, lineageID uuid.UUID) (int, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	var n int
	err := exec.QueryRow(ctx, r.q(`SELECT COUNT(*) FROM projects WHERE lineage_id = ? AND is_latest_version = TRUE`),
		lineageID.String()).Scan(&n)
	return n, err
}

func (r *SQLProjectRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func scanProject(row database.Row) (*domain.Project, error) {
	var (
		id, orderNumber, name, projectType, status string
		leadID, assistantID, lineageID             string
		parentID                                   sql.NullString
		versionNumber, version                     int
		isLatest                                   bool
		versionState, state, createdAt, updatedAt  string
	)
	err := row.Scan(&id, &orderNumber, &name, &projectType, &status, &leadID, &assistantID,
		&lineageID, &parentID, &versionNumber, &isLatest, &versionState,
		&state, &version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var st projectState
	if err := json.Unmarshal([]byte(state), &st); err != nil {
		return nil, fmt.Errorf("decode project state %s: %w", id, err)
	}
	s := domain.Snapshot{
		OrderNumber:        orderNumber,
		Name:               name,
		Type:               domain.ProjectType(projectType),
		Status:             domain.Status(status),
		Hold:               st.Hold,
		Cancellation:       st.Cancellation,
		Departments:        st.Departments,
		Acknowledgements:   st.Acknowledgements,
		Mockup:             st.Mockup,
		SampleRequired:     st.SampleRequired,
		SampleApproval:     st.SampleApproval,
		Invoice:            st.Invoice,
		Payments:           st.Payments,
		Feedbacks:          st.Feedbacks,
		GateWatches:        st.GateWatches,
		CorporateEmergency: st.CorporateEmergency,
		VersionNumber:      versionNumber,
		IsLatestVersion:    isLatest,
		VersionState:       domain.VersionState(versionState),
		ReopenReason:       st.ReopenReason,
		Version:            version,
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if s.LeadID, err = parseOptionalID(leadID); err != nil {
		return nil, err
	}
	if s.AssistantID, err = parseOptionalID(assistantID); err != nil {
		return nil, err
	}
	if s.LineageID, err = parseOptionalID(lineageID); err != nil {
		return nil, err
	}
	if s.ParentProjectID, err = parseOptionalID(parentID.String); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return domain.RehydrateProject(s), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func nullID(id uuid.UUID) sql.NullString {
	if id == uuid.Nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func parseOptionalID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

var _ domain.Repository = (*SQLProjectRepository)(nil)
