package engine

import "strings"

// TemplateRequirement is a curated starter requirement. Templates are served
// as-is and never persisted; an analyst edits and submits them explicitly.
type TemplateRequirement struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	BusinessProcess string   `json:"business_process"`
	Priority        string   `json:"priority"`
}

var domainTemplates = map[string][]TemplateRequirement{
	"finance": {
		{
			Title:           "Automate three-way invoice matching",
			Description:     "Supplier invoices are matched against purchase orders and goods receipts by hand; mismatches sit in a shared mailbox for days.",
			Tags:            []string{"manual_step", "automation"},
			BusinessProcess: "Invoice Processing",
			Priority:        "Must-Have",
		},
		{
			Title:           "Month-end close checklist with owner sign-off",
			Description:     "Close activities live in a spreadsheet with no enforced order or ownership, so steps get skipped under deadline pressure.",
			Tags:            []string{"workaround", "compliance"},
			BusinessProcess: "Financial Close",
			Priority:        "Must-Have",
		},
		{
			Title:           "Real-time cash position dashboard",
			Description:     "Treasury consolidates bank balances manually every morning; intraday positions are unknown.",
			Tags:            []string{"reporting", "manual_step"},
			BusinessProcess: "Cash Management",
			Priority:        "Should-Have",
		},
	},
	"sales": {
		{
			Title:           "Quote approval workflow with discount thresholds",
			Description:     "Discounts above list price tolerance are approved over chat; there is no audit trail of who approved what.",
			Tags:            []string{"compliance", "workaround"},
			BusinessProcess: "Quote to Order",
			Priority:        "Must-Have",
		},
		{
			Title:           "Available-to-promise check at order entry",
			Description:     "Reps promise delivery dates without stock visibility, causing frequent reschedules and credit notes.",
			Tags:            []string{"pain_point", "integration"},
			BusinessProcess: "Order Management",
			Priority:        "Must-Have",
		},
		{
			Title:           "Customer-specific price lists synced from contracts",
			Description:     "Negotiated prices are retyped from contract PDFs into the order screen, with regular transcription errors.",
			Tags:            []string{"manual_step", "data_quality"},
			BusinessProcess: "Pricing",
			Priority:        "Should-Have",
		},
	},
	"procurement": {
		{
			Title:           "Purchase requisition approval by spend category",
			Description:     "All requisitions route to one director regardless of value, creating a multi-day bottleneck for office supplies.",
			Tags:            []string{"pain_point", "automation"},
			BusinessProcess: "Purchase Requisitioning",
			Priority:        "Must-Have",
		},
		{
			Title:           "Supplier master deduplication and onboarding checks",
			Description:     "The vendor file holds duplicate and stale suppliers; onboarding skips tax and bank verification.",
			Tags:            []string{"data_quality", "compliance"},
			BusinessProcess: "Supplier Management",
			Priority:        "Must-Have",
		},
		{
			Title:           "Contract expiry alerts for framework agreements",
			Description:     "Framework agreements lapse unnoticed and spend silently reverts to spot pricing.",
			Tags:            []string{"reporting"},
			BusinessProcess: "Contract Management",
			Priority:        "Nice-to-Have",
		},
	},
	"manufacturing": {
		{
			Title:           "Paperless shop-floor work instructions",
			Description:     "Operators work from printed routings that are often a revision behind engineering changes.",
			Tags:            []string{"manual_step", "data_quality"},
			BusinessProcess: "Production Execution",
			Priority:        "Must-Have",
		},
		{
			Title:           "Backflush component consumption at operation confirmation",
			Description:     "Component usage is booked in a weekly batch, so inventory accuracy degrades between counts.",
			Tags:            []string{"automation", "pain_point"},
			BusinessProcess: "Production Execution",
			Priority:        "Should-Have",
		},
		{
			Title:           "Machine downtime capture with reason codes",
			Description:     "Downtime is logged on a whiteboard and retyped into a spreadsheet at shift end; root causes are guesswork.",
			Tags:            []string{"workaround", "reporting"},
			BusinessProcess: "Plant Maintenance",
			Priority:        "Should-Have",
		},
	},
	"hr": {
		{
			Title:           "Single onboarding checklist across IT, payroll and facilities",
			Description:     "New joiners are announced by email to three departments; access and equipment regularly arrive weeks late.",
			Tags:            []string{"pain_point", "integration"},
			BusinessProcess: "Employee Onboarding",
			Priority:        "Must-Have",
		},
		{
			Title:           "Absence requests with balance validation",
			Description:     "Leave is requested by email and tracked in a team spreadsheet that disagrees with payroll.",
			Tags:            []string{"workaround", "data_quality"},
			BusinessProcess: "Time and Absence",
			Priority:        "Must-Have",
		},
		{
			Title:           "Headcount and attrition reporting by organisation unit",
			Description:     "Monthly headcount packs are assembled by hand from exports, two weeks after month end.",
			Tags:            []string{"reporting", "manual_step"},
			BusinessProcess: "Workforce Analytics",
			Priority:        "Nice-to-Have",
		},
	},
}

// Templates returns the starter requirements for a domain. The domain name is
// matched case-insensitively.
func Templates(domainName string) ([]TemplateRequirement, error) {
	tpls, ok := domainTemplates[strings.ToLower(strings.TrimSpace(domainName))]
	if !ok {
		return nil, ValidationError{Msg: "unknown template domain: " + domainName}
	}
	return tpls, nil
}

// TemplateDomains lists the supported template domains.
func TemplateDomains() []string {
	return []string{"finance", "sales", "procurement", "manufacturing", "hr"}
}
