package engine

import (
	"context"

	"go.uber.org/zap"

	"fitgap/internal/domain"
	"fitgap/internal/events"
)

// CreateRequirement persists a manually captured requirement. The store
// assigns the REQ-NNN id and timestamp; the caller's priority, if present,
// must be one of the known values.
func (e Engine) CreateRequirement(ctx context.Context, req domain.Requirement, actor string) (domain.Requirement, error) {
	if req.EngagementID == "" {
		return domain.Requirement{}, ValidationError{Msg: "engagement id required"}
	}
	if req.Title == "" {
		return domain.Requirement{}, ValidationError{Msg: "title required"}
	}
	if req.Priority != "" && normalizePriority(req.Priority) == "" {
		return domain.Requirement{}, ValidationError{Msg: "priority must be Must-Have, Should-Have or Nice-to-Have"}
	}
	if req.SourceType == "" {
		req.SourceType = "Manual"
	}
	created, err := e.Repo.CreateRequirement(ctx, req)
	if err != nil {
		return domain.Requirement{}, wrapStore("create requirement", err)
	}
	if err := e.Events.Append(ctx, "requirement.created", created.EngagementID, "requirement", created.ReqID,
		actorOr(actor), events.EventPayload{"source_type": created.SourceType}); err != nil {
		e.Log.Warn("event not recorded", zap.String("type", "requirement.created"), zap.Error(err))
	}
	return created, nil
}

// GetRequirement fetches one requirement.
func (e Engine) GetRequirement(ctx context.Context, engagementID, reqID string) (domain.Requirement, error) {
	req, err := e.Repo.GetRequirement(ctx, engagementID, reqID)
	if err != nil {
		return domain.Requirement{}, wrapStore("get requirement "+reqID, err)
	}
	return req, nil
}

// ListRequirements returns the engagement's requirements, never nil.
func (e Engine) ListRequirements(ctx context.Context, engagementID string) ([]domain.Requirement, error) {
	if engagementID == "" {
		return nil, ValidationError{Msg: "engagement id required"}
	}
	reqs, err := e.Repo.ListRequirements(ctx, engagementID)
	if err != nil {
		return nil, wrapStore("list requirements", err)
	}
	if reqs == nil {
		reqs = []domain.Requirement{}
	}
	return reqs, nil
}
