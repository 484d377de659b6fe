package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fitgap/internal/catalog"
	"fitgap/internal/domain"
	"fitgap/internal/events"
)

const defaultMatchLimit = 5

const classifySystem = `You are an ERP fit-gap analyst. You match captured business requirements
against a reference catalogue of standard process capabilities. Answer with JSON only, no prose.`

type ClassifyInput struct {
	EngagementID string
	// Exactly one of Description / ReqID.
	Description string
	ReqID       string
	Limit       int
	Category    string
	Actor       string
}

type ClassifyOutput struct {
	Result domain.GapResult
	// Saved reports whether the gap result reached the store. Persistence is
	// best effort; a failed write is logged, never returned as an error.
	Saved bool
}

// Classify runs one classification against the catalogue. It never changes
// the requirement's lifecycle status.
func (e Engine) Classify(ctx context.Context, in ClassifyInput) (ClassifyOutput, error) {
	if in.EngagementID == "" {
		return ClassifyOutput{}, ValidationError{Msg: "engagement id required"}
	}
	if in.Description == "" && in.ReqID == "" {
		return ClassifyOutput{}, ValidationError{Msg: "process description or req_id required"}
	}
	if in.Description != "" && in.ReqID != "" {
		return ClassifyOutput{}, ValidationError{Msg: "provide a process description or a req_id, not both"}
	}
	if in.Limit < 0 {
		return ClassifyOutput{}, ValidationError{Msg: "limit must be positive"}
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultMatchLimit
	}

	description := in.Description
	var reqIDPtr *string
	if in.ReqID != "" {
		req, err := e.Repo.GetRequirement(ctx, in.EngagementID, in.ReqID)
		if err != nil {
			return ClassifyOutput{}, wrapStore("get requirement "+in.ReqID, err)
		}
		description = req.Description
		if description == "" {
			description = req.Title
		}
		id := req.ReqID
		reqIDPtr = &id
	}

	matches, tokens, err := e.matchCatalogue(ctx, description, limit, in.Category)
	if err != nil {
		return ClassifyOutput{}, err
	}

	result := domain.GapResult{
		EngagementID:       in.EngagementID,
		ProcessDescription: description,
		Matches:            matches,
		ReqID:              reqIDPtr,
		TokensUsed:         &tokens,
	}
	saved := true
	persisted, err := e.Repo.InsertGapResult(ctx, result)
	if err != nil {
		saved = false
		e.Log.Warn("gap result not persisted",
			zap.String("engagement_id", in.EngagementID),
			zap.Error(err))
	} else {
		result = persisted
		if err := e.Events.Append(ctx, "gap.analysed", in.EngagementID, "gap_result", result.ID,
			actorOr(in.Actor), events.EventPayload{"req_id": in.ReqID, "matches": len(matches)}); err != nil {
			e.Log.Warn("event not recorded", zap.String("type", "gap.analysed"), zap.Error(err))
		}
	}
	return ClassifyOutput{Result: result, Saved: saved}, nil
}

// matchCatalogue does the provider round trip and turns the reply into match
// records. The reply is truncated to limit entries first; unknown catalogue
// ids are then dropped, so a hallucinated id consumes its slot rather than
// letting a later entry refill the list.
func (e Engine) matchCatalogue(ctx context.Context, description string, limit int, category string) ([]domain.Match, int, error) {
	items := e.Catalogue.FilterCategory(category)
	prompt := fmt.Sprintf(`Reference catalogue:
%s
Business requirement:
%s

Return a JSON array of the best catalogue matches, at most %d, ordered best first.
Each element: {"id": "<catalogue id>", "confidence": "HIGH"|"MEDIUM"|"LOW", "rationale": "<one sentence>"}.
Return [] if nothing in the catalogue fits.`, catalog.PromptText(items), description, limit)

	completion, err := e.Provider.Complete(ctx, classifySystem, prompt)
	if err != nil {
		return nil, 0, ProviderError{Err: err}
	}
	payload, err := extractJSONArray(completion.Content)
	if err != nil {
		return nil, 0, err
	}
	var raw []struct {
		ID         string `json:"id"`
		Confidence string `json:"confidence"`
		Rationale  string `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, 0, ExtractionError{Msg: "match array does not decode: " + err.Error()}
	}

	if len(raw) > limit {
		raw = raw[:limit]
	}
	matches := []domain.Match{}
	for _, m := range raw {
		item, ok := e.Catalogue.ByID(strings.TrimSpace(m.ID))
		if !ok {
			e.Log.Debug("unknown catalogue id in model reply", zap.String("id", m.ID))
			continue
		}
		matches = append(matches, domain.Match{
			ID:               item.ID,
			Name:             item.Name,
			Category:         item.Category,
			Group:            item.Group,
			Description:      item.Description,
			Confidence:       normalizeConfidence(m.Confidence),
			Rationale:        m.Rationale,
			MigrationObjects: item.MigrationObjects,
		})
	}
	return matches, completion.TokensUsed(), nil
}

func normalizeConfidence(s string) string {
	switch up := strings.ToUpper(strings.TrimSpace(s)); up {
	case "HIGH", "MEDIUM", "LOW":
		return up
	}
	return "MEDIUM"
}

func actorOr(actor string) string {
	if actor == "" {
		return "system"
	}
	return actor
}
