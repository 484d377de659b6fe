package engine

import (
	"context"

	"go.uber.org/zap"

	"fitgap/internal/domain"
	"fitgap/internal/repo"
)

type SweepItem struct {
	ReqID         string `json:"req_id"`
	Title         string `json:"title"`
	TopMatchID    string `json:"top_match_id,omitempty"`
	TopMatchName  string `json:"top_match_name,omitempty"`
	TopConfidence string `json:"top_confidence,omitempty"`
}

type SweepResult struct {
	Processed int         `json:"processed"`
	Results   []SweepItem `json:"results"`
}

// AnalyseAll classifies every open requirement in the engagement, one at a
// time. A failed item is logged and skipped; the rest of the sweep continues
// and the skipped requirement stays open.
func (e Engine) AnalyseAll(ctx context.Context, engagementID, actor string) (SweepResult, error) {
	if engagementID == "" {
		return SweepResult{}, ValidationError{Msg: "engagement id required"}
	}
	reqs, err := e.Repo.ListRequirements(ctx, engagementID)
	if err != nil {
		return SweepResult{}, wrapStore("list requirements", err)
	}

	out := SweepResult{Results: []SweepItem{}}
	for _, req := range reqs {
		if req.Status != domain.StatusOpen {
			continue
		}
		res, err := e.Classify(ctx, ClassifyInput{
			EngagementID: engagementID,
			ReqID:        req.ReqID,
			Actor:        actor,
		})
		if err != nil {
			e.Log.Warn("sweep item failed",
				zap.String("engagement_id", engagementID),
				zap.String("req_id", req.ReqID),
				zap.Error(err))
			continue
		}
		if err := e.markAnalysed(ctx, engagementID, req.ReqID, actor); err != nil {
			e.Log.Warn("status transition failed",
				zap.String("req_id", req.ReqID),
				zap.Error(err))
		}
		item := SweepItem{ReqID: req.ReqID, Title: req.Title}
		if len(res.Result.Matches) > 0 {
			top := res.Result.Matches[0]
			item.TopMatchID = top.ID
			item.TopMatchName = top.Name
			item.TopConfidence = top.Confidence
		}
		out.Results = append(out.Results, item)
		out.Processed++
	}
	return out, nil
}

func (e Engine) markAnalysed(ctx context.Context, engagementID, reqID, actor string) error {
	status := domain.StatusAnalysed
	if _, err := e.Repo.UpdateRequirement(ctx, engagementID, reqID, repo.RequirementUpdate{Status: &status}); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, "requirement.analysed", engagementID, "requirement", reqID,
		actorOr(actor), nil); err != nil {
		e.Log.Warn("event not recorded", zap.String("type", "requirement.analysed"), zap.Error(err))
	}
	return nil
}
