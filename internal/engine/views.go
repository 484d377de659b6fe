package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fitgap/internal/domain"
)

const unclassifiedProcess = "Unclassified"

// --- engagement summary ---

type GapResultSummary struct {
	ReqID         string `json:"req_id"`
	TopMatchID    string `json:"top_match_id"`
	TopMatchName  string `json:"top_match_name"`
	TopConfidence string `json:"top_confidence"`
}

type EngagementSummary struct {
	EngagementID         string             `json:"engagement_id"`
	TotalRequirements    int                `json:"total_requirements"`
	RequirementsByStatus map[string]int     `json:"requirements_by_status"`
	RequirementsByTag    map[string]int     `json:"requirements_by_tag"`
	TotalAnalysed        int                `json:"total_analysed"`
	GapResultsSummary    []GapResultSummary `json:"gap_results_summary"`
}

// Summary builds the engagement dashboard: status and tag histograms plus the
// top match of the latest gap result per analysed requirement. Requirements
// whose analysis produced no matches are left out of the gap summary.
func (e Engine) Summary(ctx context.Context, engagementID string) (EngagementSummary, error) {
	if engagementID == "" {
		return EngagementSummary{}, ValidationError{Msg: "engagement id required"}
	}
	reqs, err := e.Repo.ListRequirements(ctx, engagementID)
	if err != nil {
		return EngagementSummary{}, wrapStore("list requirements", err)
	}
	out := EngagementSummary{
		EngagementID:         engagementID,
		TotalRequirements:    len(reqs),
		RequirementsByStatus: map[string]int{},
		RequirementsByTag:    map[string]int{},
		GapResultsSummary:    []GapResultSummary{},
	}
	for _, req := range reqs {
		out.RequirementsByStatus[req.Status]++
		for _, t := range req.Tags {
			out.RequirementsByTag[t]++
		}
		if req.Status != domain.StatusAnalysed {
			continue
		}
		out.TotalAnalysed++
		results, err := e.Repo.ListGapResultsByReq(ctx, engagementID, req.ReqID)
		if err != nil {
			e.Log.Warn("gap results unavailable for summary",
				zap.String("req_id", req.ReqID), zap.Error(err))
			continue
		}
		if len(results) == 0 || len(results[0].Matches) == 0 {
			continue
		}
		top := results[0].Matches[0]
		out.GapResultsSummary = append(out.GapResultsSummary, GapResultSummary{
			ReqID:         req.ReqID,
			TopMatchID:    top.ID,
			TopMatchName:  top.Name,
			TopConfidence: top.Confidence,
		})
	}
	return out, nil
}

// --- process mirror ---

type MirrorEntry struct {
	ReqID       string `json:"req_id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Stakeholder string `json:"stakeholder,omitempty"`
}

type ProcessMirror struct {
	EngagementID string `json:"engagement_id"`
	Summary      struct {
		TotalRequirements int            `json:"total_requirements"`
		ByTag             map[string]int `json:"by_tag"`
	} `json:"summary"`
	ByTag       map[string][]MirrorEntry `json:"by_tag"`
	Untagged    []MirrorEntry            `json:"untagged"`
	GeneratedAt string                   `json:"generated_at"`
}

// ProcessMirror groups the engagement's requirements by tag. A requirement
// with N tags appears in all N groups; one with no tags lands in untagged.
func (e Engine) ProcessMirror(ctx context.Context, engagementID string) (ProcessMirror, error) {
	if engagementID == "" {
		return ProcessMirror{}, ValidationError{Msg: "engagement id required"}
	}
	reqs, err := e.Repo.ListRequirements(ctx, engagementID)
	if err != nil {
		return ProcessMirror{}, wrapStore("list requirements", err)
	}
	out := ProcessMirror{
		EngagementID: engagementID,
		ByTag:        map[string][]MirrorEntry{},
		Untagged:     []MirrorEntry{},
		GeneratedAt:  e.nowRFC3339(),
	}
	out.Summary.TotalRequirements = len(reqs)
	out.Summary.ByTag = map[string]int{}
	for _, req := range reqs {
		entry := MirrorEntry{
			ReqID:       req.ReqID,
			Title:       req.Title,
			Status:      req.Status,
			Stakeholder: req.Stakeholder,
		}
		if len(req.Tags) == 0 {
			out.Untagged = append(out.Untagged, entry)
			continue
		}
		for _, t := range req.Tags {
			out.ByTag[t] = append(out.ByTag[t], entry)
			out.Summary.ByTag[t]++
		}
	}
	return out, nil
}

// --- sign-off status ---

type SignOffCounts struct {
	Total         int `json:"total"`
	Draft         int `json:"draft"`
	SMEApproved   int `json:"sme_approved"`
	OwnerApproved int `json:"owner_approved"`
	Confirmed     int `json:"confirmed"`
}

type SignOffSummary struct {
	EngagementID string                   `json:"engagement_id"`
	SignOffCounts
	ByProcess map[string]SignOffCounts `json:"by_process"`
}

// SignOffStatus reports sign-off progress overall and per business process.
// Requirements without a business_process fall under "Unclassified".
func (e Engine) SignOffStatus(ctx context.Context, engagementID string) (SignOffSummary, error) {
	if engagementID == "" {
		return SignOffSummary{}, ValidationError{Msg: "engagement id required"}
	}
	reqs, err := e.Repo.ListRequirements(ctx, engagementID)
	if err != nil {
		return SignOffSummary{}, wrapStore("list requirements", err)
	}
	out := SignOffSummary{
		EngagementID: engagementID,
		ByProcess:    map[string]SignOffCounts{},
	}
	for _, req := range reqs {
		process := unclassifiedProcess
		if req.BusinessProcess != nil && *req.BusinessProcess != "" {
			process = *req.BusinessProcess
		}
		counts := out.ByProcess[process]
		bump(&out.SignOffCounts, req.SignOffStatus)
		bump(&counts, req.SignOffStatus)
		out.ByProcess[process] = counts
	}
	return out, nil
}

func bump(c *SignOffCounts, status string) {
	c.Total++
	switch status {
	case domain.SignOffDraft:
		c.Draft++
	case domain.SignOffSMEApproved:
		c.SMEApproved++
	case domain.SignOffOwnerApproved:
		c.OwnerApproved++
	case domain.SignOffConfirmed:
		c.Confirmed++
	}
}

// --- kpi summary ---

type KPIEntry struct {
	ReqID     string           `json:"req_id"`
	Title     string           `json:"title"`
	Priority  string           `json:"priority"`
	KPIImpact domain.KPIImpact `json:"kpi_impact"`
}

type KPISummary struct {
	EngagementID string                `json:"engagement_id"`
	TotalWithKPI int                   `json:"total_with_kpi"`
	ByProcess    map[string][]KPIEntry `json:"by_process"`
}

// KPISummary lists the requirements that carry a KPI impact, grouped by
// business process. Requirements without one are excluded entirely.
func (e Engine) KPISummary(ctx context.Context, engagementID string) (KPISummary, error) {
	if engagementID == "" {
		return KPISummary{}, ValidationError{Msg: "engagement id required"}
	}
	reqs, err := e.Repo.ListRequirements(ctx, engagementID)
	if err != nil {
		return KPISummary{}, wrapStore("list requirements", err)
	}
	out := KPISummary{
		EngagementID: engagementID,
		ByProcess:    map[string][]KPIEntry{},
	}
	for _, req := range reqs {
		if req.KPIImpact == nil {
			continue
		}
		process := unclassifiedProcess
		if req.BusinessProcess != nil && *req.BusinessProcess != "" {
			process = *req.BusinessProcess
		}
		out.ByProcess[process] = append(out.ByProcess[process], KPIEntry{
			ReqID:     req.ReqID,
			Title:     req.Title,
			Priority:  req.Priority,
			KPIImpact: *req.KPIImpact,
		})
		out.TotalWithKPI++
	}
	return out, nil
}

// --- traceability ---

type AsIsEvidence struct {
	CurrentStateRef *string        `json:"current_state_ref"`
	ShadowTools     []string       `json:"shadow_tools"`
	Actors          []domain.Actor `json:"actors"`
	Tags            []string       `json:"tags"`
}

type GapAnalysisTrace struct {
	TotalAnalyses int            `json:"total_analyses"`
	Matches       []domain.Match `json:"matches"`
}

type AnswerTo struct {
	WhoAsked    string `json:"who_asked"`
	WhatProblem string `json:"what_problem"`
}

type Traceability struct {
	Requirement  domain.Requirement `json:"requirement"`
	AsIsEvidence AsIsEvidence       `json:"as_is_evidence"`
	GapAnalysis  GapAnalysisTrace   `json:"gap_analysis"`
	AnswerTo     AnswerTo           `json:"answer_to"`
}

// Traceability walks one requirement back to its origin: the as-is evidence
// captured with it, every analysis run against it and a plain-language answer
// to "who asked for this and why". The answer strings are synthesized from the
// requirement's own fields: who_asked names the stakeholder plus any formal
// actor roles, what_problem weaves in the pain-style tags and shadow tools.
func (e Engine) Traceability(ctx context.Context, engagementID, reqID string) (Traceability, error) {
	req, err := e.Repo.GetRequirement(ctx, engagementID, reqID)
	if err != nil {
		return Traceability{}, wrapStore("get requirement "+reqID, err)
	}
	results, err := e.Repo.ListGapResultsByReq(ctx, engagementID, reqID)
	if err != nil {
		return Traceability{}, wrapStore("list gap results", err)
	}

	out := Traceability{
		Requirement: req,
		AsIsEvidence: AsIsEvidence{
			CurrentStateRef: req.CurrentStateRef,
			ShadowTools:     emptyIfNil(req.ShadowTools),
			Actors:          req.Actors,
			Tags:            req.Tags,
		},
		GapAnalysis: GapAnalysisTrace{
			TotalAnalyses: len(results),
			Matches:       []domain.Match{},
		},
	}
	if out.AsIsEvidence.Actors == nil {
		out.AsIsEvidence.Actors = []domain.Actor{}
	}
	if len(results) > 0 {
		out.GapAnalysis.Matches = results[0].Matches
	}

	out.AnswerTo = AnswerTo{
		WhoAsked:    whoAsked(req),
		WhatProblem: whatProblem(req),
	}
	return out, nil
}

func whoAsked(req domain.Requirement) string {
	who := req.Stakeholder
	if who == "" {
		who = "Unknown stakeholder"
	}
	var formal []string
	for _, a := range req.Actors {
		if a.Type == "formal" && a.Role != "" {
			formal = append(formal, a.Role)
		}
	}
	if len(formal) > 0 {
		who = fmt.Sprintf("%s (with %s)", who, strings.Join(formal, ", "))
	}
	return who
}

// Tags that describe the problem itself rather than the desired capability.
func isPainTag(tag string) bool {
	switch tag {
	case "pain_point", "manual_step", "workaround":
		return true
	}
	return false
}

func whatProblem(req domain.Requirement) string {
	var pains []string
	for _, t := range req.Tags {
		if isPainTag(t) {
			pains = append(pains, t)
		}
	}
	problem := req.Title
	if len(pains) > 0 {
		problem = fmt.Sprintf("%s: reported as %s", problem, strings.Join(pains, ", "))
	}
	if len(req.ShadowTools) > 0 {
		problem = fmt.Sprintf("%s, currently handled with %s", problem, strings.Join(req.ShadowTools, ", "))
	}
	if len(pains) == 0 && len(req.ShadowTools) == 0 && req.Description != "" {
		problem = fmt.Sprintf("%s: %s", req.Title, req.Description)
	}
	return problem
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
