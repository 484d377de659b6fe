package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"fitgap/internal/catalog"
	"fitgap/internal/domain"
	"fitgap/internal/engine"
	"fitgap/internal/llm"
)

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerUsage(api huma.API, meter *llm.Metered, cost func(llm.Usage) float64) {
	huma.Register(api, huma.Operation{
		OperationID: "usage",
		Method:      http.MethodGet,
		Path:        "/usage",
		Summary:     "Provider usage since start",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body UsageResponse `json:"body"`
	}, error) {
		var u llm.Usage
		if meter != nil {
			u = meter.Usage()
		}
		var estimated float64
		if cost != nil {
			estimated = cost(u)
		}
		return &struct {
			Body UsageResponse `json:"body"`
		}{Body: UsageResponse{
			CallCount:         u.Calls,
			TotalInputTokens:  u.InputTokens,
			TotalOutputTokens: u.OutputTokens,
			EstimatedCostUSD:  estimated,
		}}, nil
	})
}

func registerCatalogue(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-catalogue",
		Method:      http.MethodGet,
		Path:        "/catalogue",
		Summary:     "List catalogue items",
	}, func(ctx context.Context, input *struct {
		Category string `query:"category"`
	}) (*struct {
		Body []catalog.Item `json:"body"`
	}, error) {
		items := e.Catalogue.FilterCategory(input.Category)
		if items == nil {
			items = []catalog.Item{}
		}
		return &struct {
			Body []catalog.Item `json:"body"`
		}{Body: items}, nil
	})
}

func registerGapAnalysis(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "gap-analysis",
		Method:      http.MethodPost,
		Path:        "/gap-analysis",
		Summary:     "Classify a requirement against the catalogue",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusBadGateway},
	}, func(ctx context.Context, input *struct {
		Body GapAnalysisRequest `json:"body"`
	}) (*struct {
		Body GapAnalysisResponse `json:"body"`
	}, error) {
		out, err := e.Classify(ctx, engine.ClassifyInput{
			EngagementID: input.Body.EngagementID,
			Description:  input.Body.ProcessDescription,
			ReqID:        input.Body.ReqID,
			Limit:        input.Body.Limit,
			Category:     input.Body.Category,
			Actor:        analystFromContext(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body GapAnalysisResponse `json:"body"`
		}{Body: gapAnalysisResponse(out)}, nil
	})
}

func registerRequirements(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-requirement",
		Method:        http.MethodPost,
		Path:          "/requirements",
		Summary:       "Create a requirement",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body CreateRequirementRequest `json:"body"`
	}) (*struct {
		Body domain.Requirement `json:"body"`
	}, error) {
		created, err := e.CreateRequirement(ctx, input.Body.toDomain(), analystFromContext(ctx))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Requirement `json:"body"`
		}{Body: created}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-requirements",
		Method:      http.MethodGet,
		Path:        "/requirements",
		Summary:     "List requirements for an engagement",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		EngagementID string `query:"engagement_id" required:"true"`
	}) (*struct {
		Body []domain.Requirement `json:"body"`
	}, error) {
		reqs, err := e.ListRequirements(ctx, input.EngagementID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Requirement `json:"body"`
		}{Body: reqs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "requirement-templates",
		Method:      http.MethodGet,
		Path:        "/requirements/templates",
		Summary:     "Starter requirement templates for a domain",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Domain string `query:"domain" required:"true"`
	}) (*struct {
		Body TemplatesResponse `json:"body"`
	}, error) {
		tpls, err := engine.Templates(input.Domain)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TemplatesResponse `json:"body"`
		}{Body: TemplatesResponse{Domain: input.Domain, Templates: tpls}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "extract-from-transcript",
		Method:      http.MethodPost,
		Path:        "/requirements/extract-from-transcript",
		Summary:     "Extract requirements from an interview transcript",
		Errors:      []int{http.StatusBadRequest, http.StatusBadGateway},
	}, func(ctx context.Context, input *struct {
		Body ExtractRequest `json:"body"`
	}) (*struct {
		Body engine.ExtractResult `json:"body"`
	}, error) {
		out, err := e.ExtractFromTranscript(ctx, engine.ExtractInput{
			EngagementID: input.Body.EngagementID,
			Stakeholder:  input.Body.Stakeholder,
			Transcript:   input.Body.Transcript,
			Actor:        analystFromContext(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ExtractResult `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "session-turn",
		Method:      http.MethodPost,
		Path:        "/requirements/session-turn",
		Summary:     "One turn of the guided discovery interview",
		Errors:      []int{http.StatusBadRequest, http.StatusBadGateway},
	}, func(ctx context.Context, input *struct {
		Body SessionRequest `json:"body"`
	}) (*struct {
		Body engine.SessionOutput `json:"body"`
	}, error) {
		out, err := e.SessionTurn(ctx, engine.SessionInput{
			EngagementID:    input.Body.EngagementID,
			Stakeholder:     input.Body.Stakeholder,
			Role:            input.Body.Role,
			BusinessProcess: input.Body.BusinessProcess,
			Message:         input.Body.Message,
			History:         input.Body.History,
			Actor:           analystFromContext(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.SessionOutput `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-requirement",
		Method:      http.MethodGet,
		Path:        "/requirements/{req_id}",
		Summary:     "Fetch one requirement",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ReqID        string `path:"req_id"`
		EngagementID string `query:"engagement_id" required:"true"`
	}) (*struct {
		Body domain.Requirement `json:"body"`
	}, error) {
		req, err := e.GetRequirement(ctx, input.EngagementID, input.ReqID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Requirement `json:"body"`
		}{Body: req}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sign-off-requirement",
		Method:      http.MethodPost,
		Path:        "/requirements/{req_id}/sign-off",
		Summary:     "Advance a requirement through the sign-off chain",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ReqID        string         `path:"req_id"`
		EngagementID string         `query:"engagement_id" required:"true"`
		Body         SignOffRequest `json:"body"`
	}) (*struct {
		Body domain.Requirement `json:"body"`
	}, error) {
		signedBy := input.Body.SignedBy
		if signedBy == "" {
			signedBy = analystFromContext(ctx)
		}
		req, err := e.SignOff(ctx, input.EngagementID, input.ReqID, input.Body.Level, signedBy)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Requirement `json:"body"`
		}{Body: req}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "requirement-traceability",
		Method:      http.MethodGet,
		Path:        "/requirements/{req_id}/traceability",
		Summary:     "Trace a requirement back to its origin",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ReqID        string `path:"req_id"`
		EngagementID string `query:"engagement_id" required:"true"`
	}) (*struct {
		Body engine.Traceability `json:"body"`
	}, error) {
		out, err := e.Traceability(ctx, input.EngagementID, input.ReqID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.Traceability `json:"body"`
		}{Body: out}, nil
	})
}

func registerEngagement(api huma.API, e engine.Engine) {
	type engagementPath struct {
		EngagementID string `path:"engagement_id"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "analyse-all",
		Method:      http.MethodPost,
		Path:        "/engagement/{engagement_id}/analyse-all",
		Summary:     "Classify every open requirement",
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *engagementPath) (*struct {
		Body engine.SweepResult `json:"body"`
	}, error) {
		out, err := e.AnalyseAll(ctx, input.EngagementID, analystFromContext(ctx))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.SweepResult `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "engagement-summary",
		Method:      http.MethodGet,
		Path:        "/engagement/{engagement_id}/summary",
		Summary:     "Engagement dashboard",
	}, func(ctx context.Context, input *engagementPath) (*struct {
		Body engine.EngagementSummary `json:"body"`
	}, error) {
		out, err := e.Summary(ctx, input.EngagementID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.EngagementSummary `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "process-mirror",
		Method:      http.MethodGet,
		Path:        "/engagement/{engagement_id}/process-mirror",
		Summary:     "Requirements grouped by tag",
	}, func(ctx context.Context, input *engagementPath) (*struct {
		Body engine.ProcessMirror `json:"body"`
	}, error) {
		out, err := e.ProcessMirror(ctx, input.EngagementID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.ProcessMirror `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sign-off-status",
		Method:      http.MethodGet,
		Path:        "/engagement/{engagement_id}/sign-off-status",
		Summary:     "Sign-off progress",
	}, func(ctx context.Context, input *engagementPath) (*struct {
		Body engine.SignOffSummary `json:"body"`
	}, error) {
		out, err := e.SignOffStatus(ctx, input.EngagementID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.SignOffSummary `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "kpi-summary",
		Method:      http.MethodGet,
		Path:        "/engagement/{engagement_id}/kpi-summary",
		Summary:     "KPI-carrying requirements by process",
	}, func(ctx context.Context, input *engagementPath) (*struct {
		Body engine.KPISummary `json:"body"`
	}, error) {
		out, err := e.KPISummary(ctx, input.EngagementID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.KPISummary `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "engagement-events",
		Method:      http.MethodGet,
		Path:        "/engagement/{engagement_id}/events",
		Summary:     "Latest audit events",
	}, func(ctx context.Context, input *struct {
		EngagementID string `path:"engagement_id"`
		Limit        int    `query:"limit"`
	}) (*struct {
		Body []domain.Event `json:"body"`
	}, error) {
		evts, err := e.Events.Tail(ctx, input.EngagementID, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		if evts == nil {
			evts = []domain.Event{}
		}
		return &struct {
			Body []domain.Event `json:"body"`
		}{Body: evts}, nil
	})
}
