package server

import (
	"fitgap/internal/domain"
	"fitgap/internal/engine"
)

type CreateRequirementRequest struct {
	EngagementID    string            `json:"engagement_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	Stakeholder     string            `json:"stakeholder,omitempty"`
	SourceType      string            `json:"source_type,omitempty"`
	BusinessProcess string            `json:"business_process,omitempty"`
	Priority        string            `json:"priority,omitempty" enum:"Must-Have,Should-Have,Nice-to-Have"`
	Category        string            `json:"category,omitempty"`
	KPIImpact       *domain.KPIImpact `json:"kpi_impact,omitempty"`
	ConfidenceScore float64           `json:"confidence_score,omitempty"`
	CurrentStateRef string            `json:"current_state_ref,omitempty"`
	Actors          []domain.Actor    `json:"actors,omitempty"`
	ShadowTools     []string          `json:"shadow_tools,omitempty"`
}

func (r CreateRequirementRequest) toDomain() domain.Requirement {
	req := domain.Requirement{
		EngagementID:    r.EngagementID,
		Title:           r.Title,
		Description:     r.Description,
		Tags:            r.Tags,
		Stakeholder:     r.Stakeholder,
		SourceType:      r.SourceType,
		Priority:        r.Priority,
		KPIImpact:       r.KPIImpact,
		ConfidenceScore: r.ConfidenceScore,
		Actors:          r.Actors,
		ShadowTools:     r.ShadowTools,
	}
	if r.BusinessProcess != "" {
		req.BusinessProcess = &r.BusinessProcess
	}
	if r.Category != "" {
		req.Category = &r.Category
	}
	if r.CurrentStateRef != "" {
		req.CurrentStateRef = &r.CurrentStateRef
	}
	return req
}

type GapAnalysisRequest struct {
	EngagementID       string `json:"engagement_id"`
	ProcessDescription string `json:"process_description,omitempty"`
	ReqID              string `json:"req_id,omitempty"`
	Limit              int    `json:"limit,omitempty" minimum:"1"`
	Category           string `json:"category,omitempty"`
}

type GapAnalysisResponse struct {
	ID                 string         `json:"id"`
	EngagementID       string         `json:"engagement_id"`
	ProcessDescription string         `json:"process_description"`
	Matches            []domain.Match `json:"matches"`
	ReqID              *string        `json:"req_id,omitempty"`
	TokensUsed         *int           `json:"tokens_used,omitempty"`
	CreatedAt          string         `json:"created_at,omitempty"`
	Saved              bool           `json:"saved"`
}

func gapAnalysisResponse(out engine.ClassifyOutput) GapAnalysisResponse {
	r := out.Result
	return GapAnalysisResponse{
		ID:                 r.ID,
		EngagementID:       r.EngagementID,
		ProcessDescription: r.ProcessDescription,
		Matches:            r.Matches,
		ReqID:              r.ReqID,
		TokensUsed:         r.TokensUsed,
		CreatedAt:          r.CreatedAt,
		Saved:              out.Saved,
	}
}

type SignOffRequest struct {
	Level    string `json:"level" enum:"sme,owner"`
	SignedBy string `json:"signed_by"`
}

type ExtractRequest struct {
	EngagementID string `json:"engagement_id"`
	Stakeholder  string `json:"stakeholder,omitempty"`
	Transcript   string `json:"transcript"`
}

type SessionRequest struct {
	EngagementID    string                  `json:"engagement_id"`
	Stakeholder     string                  `json:"stakeholder,omitempty"`
	Role            string                  `json:"role,omitempty"`
	BusinessProcess string                  `json:"business_process,omitempty"`
	Message         string                  `json:"message"`
	History         []engine.SessionMessage `json:"history,omitempty"`
}

type UsageResponse struct {
	CallCount         int64   `json:"call_count"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	EstimatedCostUSD  float64 `json:"estimated_cost_usd"`
}

type TemplatesResponse struct {
	Domain    string                       `json:"domain"`
	Templates []engine.TemplateRequirement `json:"templates"`
}
