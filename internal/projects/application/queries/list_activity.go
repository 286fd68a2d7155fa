package queries

import (
	"context"
	"time"

	activityDomain "github.com/felixgeelhaar/jobflow/internal/activity/domain"
	"github.com/google/uuid"
)

// ActivityDTO is one audit log line.
type ActivityDTO struct {
	ID          uuid.UUID      `json:"id"`
	ActorID     uuid.UUID      `json:"actor_id"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ListActivityQuery lists a project's audit trail oldest first.
type ListActivityQuery struct {
	ProjectID uuid.UUID
	Limit     int
}

// ListActivityHandler handles the ListActivityQuery.
type ListActivityHandler struct {
	activityRepo activityDomain.Repository
}

// NewListActivityHandler creates a new ListActivityHandler.
func NewListActivityHandler(activityRepo activityDomain.Repository) *ListActivityHandler {
	return &ListActivityHandler{activityRepo: activityRepo}
}

// Handle executes the ListActivityQuery.
func (h *ListActivityHandler) Handle(ctx context.Context, query ListActivityQuery) ([]ActivityDTO, error) {
	entries, err := h.activityRepo.ListByProject(ctx, query.ProjectID, query.Limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ActivityDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ActivityDTO{
			ID:          e.ID,
			ActorID:     e.ActorID,
			Action:      string(e.Action),
			Description: e.Description,
			Details:     e.Details,
			CreatedAt:   e.CreatedAt,
		}
	}
	return dtos, nil
}
