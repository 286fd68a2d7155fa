package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/projects/domain"
	"github.com/google/uuid"
)

// ApproveMockupCommand approves the latest mockup version.
type ApproveMockupCommand struct {
	Meta
	ProjectID uuid.UUID
	Version   int
}

// ApproveMockupHandler handles the ApproveMockupCommand.
type ApproveMockupHandler struct {
	pipeline *Pipeline
}

// NewApproveMockupHandler creates a new ApproveMockupHandler.
func NewApproveMockupHandler(pipeline *Pipeline) *ApproveMockupHandler {
	return &ApproveMockupHandler{pipeline: pipeline}
}

// Handle executes the ApproveMockupCommand.
func (h *ApproveMockupHandler) Handle(ctx context.Context, cmd ApproveMockupCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.ApproveMockup(cmd.Actor, cmd.Version, now)
	})
}

// RejectMockupCommand rejects the latest mockup version.
type RejectMockupCommand struct {
	Meta
	ProjectID uuid.UUID
	Version   int
	Reason    string
}

// RejectMockupHandler handles the RejectMockupCommand.
type RejectMockupHandler struct {
	pipeline *Pipeline
}

// NewRejectMockupHandler creates a new RejectMockupHandler.
func NewRejectMockupHandler(pipeline *Pipeline) *RejectMockupHandler {
	return &RejectMockupHandler{pipeline: pipeline}
}

// Handle executes the RejectMockupCommand.
func (h *RejectMockupHandler) Handle(ctx context.Context, cmd RejectMockupCommand) (*Result, error) {
	return h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		return p.RejectMockup(cmd.Actor, cmd.Version, cmd.Reason, now)
	})
}

// UploadMockupCommand adds a new mockup version awaiting client approval.
type UploadMockupCommand struct {
	Meta
	ProjectID uuid.UUID
	FileURL   string
}

// UploadMockupResult contains the project and the new version number.
type UploadMockupResult struct {
	Result
	Version int
}

// UploadMockupHandler handles the UploadMockupCommand.
type UploadMockupHandler struct {
	pipeline *Pipeline
}

// NewUploadMockupHandler creates a new UploadMockupHandler.
func NewUploadMockupHandler(pipeline *Pipeline) *UploadMockupHandler {
	return &UploadMockupHandler{pipeline: pipeline}
}

// Handle executes the UploadMockupCommand.
func (h *UploadMockupHandler) Handle(ctx context.Context, cmd UploadMockupCommand) (*UploadMockupResult, error) {
	var version int
	res, err := h.pipeline.run(ctx, cmd.Meta, cmd.ProjectID, func(p *domain.Project, now time.Time) error {
		var err error
		version, err = p.UploadMockup(cmd.Actor, cmd.FileURL, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &UploadMockupResult{Result: *res, Version: version}, nil
}
