package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fitgap/internal/domain"
	"fitgap/internal/events"
)

// Fixed extraction tag vocabulary. Tags outside it are dropped silently so a
// creative model cannot grow the taxonomy.
var allowedTags = map[string]bool{
	"pain_point":   true,
	"manual_step":  true,
	"workaround":   true,
	"integration":  true,
	"compliance":   true,
	"reporting":    true,
	"automation":   true,
	"data_quality": true,
}

func filterTags(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if allowedTags[t] {
			out = append(out, t)
		}
	}
	return out
}

// candidate is the shape the model is asked to emit for each requirement it
// finds in a conversation.
type candidate struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Tags            []string          `json:"tags"`
	BusinessProcess string            `json:"business_process"`
	Priority        string            `json:"priority"`
	Category        string            `json:"category"`
	ShadowTools     []string          `json:"shadow_tools"`
	Actors          []domain.Actor    `json:"actors"`
	KPIImpact       *domain.KPIImpact `json:"kpi_impact"`
}

const extractSystem = `You are an ERP requirements analyst. You read interview transcripts and
extract discrete business requirements. Answer with JSON only, no prose.`

const extractPromptFormat = `Each element: {"title": "...", "description": "...",
"tags": ["pain_point"|"manual_step"|"workaround"|"integration"|"compliance"|"reporting"|"automation"|"data_quality"],
"business_process": "...", "priority": "Must-Have"|"Should-Have"|"Nice-to-Have",
"category": "...", "shadow_tools": ["..."],
"actors": [{"role": "...", "type": "formal"|"informal"}],
"kpi_impact": {"metric": "...", "current": "...", "target": "...", "unit": "..."} or null}`

type ExtractInput struct {
	EngagementID string
	Stakeholder  string
	Transcript   string
	Actor        string
}

type ExtractResult struct {
	Created      int                  `json:"created"`
	Requirements []domain.Requirement `json:"requirements"`
}

// ExtractFromTranscript mines a raw interview transcript for requirements and
// persists each viable candidate. A candidate that fails to persist is logged
// and skipped; the rest of the batch still lands.
func (e Engine) ExtractFromTranscript(ctx context.Context, in ExtractInput) (ExtractResult, error) {
	if in.EngagementID == "" {
		return ExtractResult{}, ValidationError{Msg: "engagement id required"}
	}
	if strings.TrimSpace(in.Transcript) == "" {
		return ExtractResult{}, ValidationError{Msg: "transcript required"}
	}

	prompt := fmt.Sprintf(`Interview transcript:
%s

Extract every distinct business requirement as a JSON array.
%s
Return [] if the transcript contains no requirements.`, in.Transcript, extractPromptFormat)

	completion, err := e.Provider.Complete(ctx, extractSystem, prompt)
	if err != nil {
		return ExtractResult{}, ProviderError{Err: err}
	}
	payload, err := extractJSONArray(completion.Content)
	if err != nil {
		return ExtractResult{}, err
	}
	var candidates []candidate
	if err := json.Unmarshal([]byte(payload), &candidates); err != nil {
		return ExtractResult{}, ExtractionError{Msg: "candidate array does not decode: " + err.Error()}
	}

	out := ExtractResult{Requirements: []domain.Requirement{}}
	for _, c := range candidates {
		created, err := e.createFromCandidate(ctx, in.EngagementID, in.Stakeholder, in.Transcript, in.Actor, c)
		if err != nil {
			e.Log.Warn("extracted candidate not persisted",
				zap.String("engagement_id", in.EngagementID),
				zap.String("title", c.Title),
				zap.Error(err))
			continue
		}
		out.Requirements = append(out.Requirements, created)
		out.Created++
	}
	return out, nil
}

func (e Engine) createFromCandidate(ctx context.Context, engagementID, stakeholder, rawInput, actor string, c candidate) (domain.Requirement, error) {
	if strings.TrimSpace(c.Title) == "" {
		return domain.Requirement{}, fmt.Errorf("candidate has no title")
	}
	req := domain.Requirement{
		EngagementID: engagementID,
		Title:        c.Title,
		Description:  c.Description,
		SourceType:   "Conversation",
		Tags:         filterTags(c.Tags),
		Stakeholder:  stakeholder,
		Priority:     normalizePriority(c.Priority),
		KPIImpact:    c.KPIImpact,
		Actors:       c.Actors,
		ShadowTools:  c.ShadowTools,
	}
	if rawInput != "" {
		req.RawInput = &rawInput
	}
	if c.BusinessProcess != "" {
		req.BusinessProcess = &c.BusinessProcess
	}
	if c.Category != "" {
		req.Category = &c.Category
	}
	created, err := e.Repo.CreateRequirement(ctx, req)
	if err != nil {
		return domain.Requirement{}, err
	}
	if err := e.Events.Append(ctx, "requirement.created", engagementID, "requirement", created.ReqID,
		actorOr(actor), events.EventPayload{"source_type": created.SourceType}); err != nil {
		e.Log.Warn("event not recorded", zap.String("type", "requirement.created"), zap.Error(err))
	}
	return created, nil
}

func normalizePriority(p string) string {
	switch p {
	case domain.PriorityMust, domain.PriorityShould, domain.PriorityNice:
		return p
	}
	return ""
}

// --- archaeologist session ---

const sessionSystem = `You are a requirements archaeologist running a discovery interview for an
ERP implementation. Ask one probing question at a time, dig for the as-is
process, the people involved, the shadow tools and the measurable impact.
Answer with a single JSON object, no prose outside it.`

type SessionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SessionInput struct {
	EngagementID    string
	Stakeholder     string
	Role            string
	BusinessProcess string
	Message         string
	History         []SessionMessage
	Actor           string
}

type SessionOutput struct {
	Reply             string   `json:"reply"`
	FollowUpQuestions []string `json:"follow_up_questions"`
	CreatedReqID      *string  `json:"created_req_id,omitempty"`
	Extracted         bool     `json:"extracted"`
}

// SessionTurn runs one turn of the guided interview. When the model marks a
// requirement as ready it is persisted immediately; a failed create is logged
// and the conversational reply still goes back to the caller.
func (e Engine) SessionTurn(ctx context.Context, in SessionInput) (SessionOutput, error) {
	if in.EngagementID == "" {
		return SessionOutput{}, ValidationError{Msg: "engagement id required"}
	}
	if strings.TrimSpace(in.Message) == "" {
		return SessionOutput{}, ValidationError{Msg: "message required"}
	}

	var transcript strings.Builder
	for _, m := range in.History {
		fmt.Fprintf(&transcript, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&transcript, "stakeholder: %s\n", in.Message)

	prompt := fmt.Sprintf(`Stakeholder: %s (%s)
Business process under discussion: %s

Conversation so far:
%s
Respond with one JSON object:
{"reply": "<your next message to the stakeholder>",
 "extracted": {"ready": true|false, %s},
 "follow_up_questions": ["..."]}
Set ready to true only once title, description and the as-is detail are solid.`,
		orUnknown(in.Stakeholder), orUnknown(in.Role), orUnknown(in.BusinessProcess),
		transcript.String(), strings.TrimPrefix(extractPromptFormat, "Each element: {"))

	completion, err := e.Provider.Complete(ctx, sessionSystem, prompt)
	if err != nil {
		return SessionOutput{}, ProviderError{Err: err}
	}
	payload, err := extractJSONObject(completion.Content)
	if err != nil {
		return SessionOutput{}, err
	}
	var parsed struct {
		Reply     string `json:"reply"`
		Extracted *struct {
			Ready bool `json:"ready"`
			candidate
		} `json:"extracted"`
		FollowUpQuestions []string `json:"follow_up_questions"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return SessionOutput{}, ExtractionError{Msg: "session reply does not decode: " + err.Error()}
	}

	out := SessionOutput{
		Reply:             parsed.Reply,
		FollowUpQuestions: parsed.FollowUpQuestions,
	}
	if out.FollowUpQuestions == nil {
		out.FollowUpQuestions = []string{}
	}
	if parsed.Extracted != nil && parsed.Extracted.Ready {
		c := parsed.Extracted.candidate
		if c.BusinessProcess == "" {
			c.BusinessProcess = in.BusinessProcess
		}
		created, err := e.createFromCandidate(ctx, in.EngagementID, in.Stakeholder, transcript.String(), in.Actor, c)
		if err != nil {
			e.Log.Warn("session requirement not persisted",
				zap.String("engagement_id", in.EngagementID),
				zap.Error(err))
		} else {
			out.CreatedReqID = &created.ReqID
			out.Extracted = true
		}
	}
	return out, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
