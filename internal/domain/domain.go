package domain

// Requirement is one captured business requirement, scoped to an engagement.
// ReqID and EngagementID are immutable after creation; ReqID suffixes are
// assigned monotonically within an engagement.
type Requirement struct {
	ReqID           string     `json:"req_id"`
	EngagementID    string     `json:"engagement_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	SourceType      string     `json:"source_type,omitempty"`
	Tags            []string   `json:"tags"`
	Stakeholder     string     `json:"stakeholder,omitempty"`
	RawInput        *string    `json:"raw_input,omitempty"`
	Status          string     `json:"status" enum:"open,analysed"`
	CreatedAt       string     `json:"created_at" format:"date-time"`
	BusinessProcess *string    `json:"business_process,omitempty"`
	Priority        string     `json:"priority" enum:"Must-Have,Should-Have,Nice-to-Have"`
	Category        *string    `json:"category,omitempty"`
	KPIImpact       *KPIImpact `json:"kpi_impact,omitempty"`
	ConfidenceScore float64    `json:"confidence_score"`
	CurrentStateRef *string    `json:"current_state_ref,omitempty"`
	Actors          []Actor    `json:"actors,omitempty"`
	ShadowTools     []string   `json:"shadow_tools,omitempty"`
	SignOffStatus   string     `json:"sign_off_status" enum:"draft,sme_approved,owner_approved,confirmed"`
	SignOffBy       *string    `json:"sign_off_by,omitempty"`
	SignOffAt       *string    `json:"sign_off_at,omitempty" format:"date-time"`
	MappingID       *string    `json:"mapping_id,omitempty"`
	FitAssessment   *string    `json:"fit_assessment,omitempty"`
}

// KPIImpact records a metric the requirement is expected to move.
type KPIImpact struct {
	Metric  string `json:"metric"`
	Current string `json:"current,omitempty"`
	Target  string `json:"target"`
	Unit    string `json:"unit,omitempty"`
}

// Actor is a person or role involved in the as-is process.
type Actor struct {
	Role string `json:"role"`
	Type string `json:"type" enum:"formal,informal"`
}

// Match is one catalogue hit inside a gap result. Matches keep the order the
// model ranked them in; nothing downstream re-sorts.
type Match struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Group            string   `json:"group"`
	Description      string   `json:"description"`
	Confidence       string   `json:"confidence" enum:"HIGH,MEDIUM,LOW"`
	Rationale        string   `json:"rationale"`
	MigrationObjects []string `json:"migration_objects,omitempty"`
}

// GapResult is one immutable classification run.
type GapResult struct {
	ID                 string  `json:"id"`
	EngagementID       string  `json:"engagement_id"`
	ProcessDescription string  `json:"process_description"`
	Matches            []Match `json:"matches"`
	ReqID              *string `json:"req_id,omitempty"`
	TokensUsed         *int    `json:"tokens_used,omitempty"`
	CreatedAt          string  `json:"created_at" format:"date-time"`
}

// Event is one append-only audit log row.
type Event struct {
	ID           int64  `json:"id"`
	TS           string `json:"ts" format:"date-time"`
	Type         string `json:"type"`
	EngagementID string `json:"engagement_id,omitempty"`
	EntityKind   string `json:"entity_kind"`
	EntityID     string `json:"entity_id,omitempty"`
	ActorID      string `json:"actor_id"`
	Payload      string `json:"payload_json"`
}

// APIKey authenticates an analyst against the HTTP API.
type APIKey struct {
	ID        string `json:"id"`
	AnalystID string `json:"analyst_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"key_hash"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

// Lifecycle statuses.
const (
	StatusOpen     = "open"
	StatusAnalysed = "analysed"
)

// Sign-off statuses.
const (
	SignOffDraft         = "draft"
	SignOffSMEApproved   = "sme_approved"
	SignOffOwnerApproved = "owner_approved"
	SignOffConfirmed     = "confirmed"
)

// Priorities.
const (
	PriorityMust   = "Must-Have"
	PriorityShould = "Should-Have"
	PriorityNice   = "Nice-to-Have"
)
