// Package repo is the durable store adapter for requirements and gap results.
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"fitgap/internal/domain"
)

type Repo struct {
	DB  *sql.DB
	Now func() time.Time
}

var ErrNotFound = errors.New("not found")

func (r Repo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

const requirementColumns = `req_id,engagement_id,title,description,source_type,tags_json,stakeholder,raw_input,status,created_at,
business_process,priority,category,kpi_impact_json,confidence_score,current_state_ref,actors_json,shadow_tools_json,
sign_off_status,sign_off_by,sign_off_at,mapping_id,fit_assessment`

// CreateRequirement persists a new requirement, assigning the next REQ-NNN id
// within the engagement and a server-side UTC timestamp. Caller-provided
// ReqID/CreatedAt/Status values are ignored.
func (r Repo) CreateRequirement(ctx context.Context, req domain.Requirement) (domain.Requirement, error) {
	if req.EngagementID == "" {
		return domain.Requirement{}, fmt.Errorf("engagement id required")
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Requirement{}, err
	}
	defer tx.Rollback()

	nextID, err := nextReqID(ctx, tx, req.EngagementID)
	if err != nil {
		return domain.Requirement{}, err
	}
	req.ReqID = nextID
	req.Status = domain.StatusOpen
	req.CreatedAt = r.now().UTC().Format(time.RFC3339)
	if req.Priority == "" {
		req.Priority = domain.PriorityMust
	}
	if req.SignOffStatus == "" {
		req.SignOffStatus = domain.SignOffDraft
	}
	if req.ConfidenceScore == 0 {
		req.ConfidenceScore = 0.8
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	tagsJSON, err := json.Marshal(req.Tags)
	if err != nil {
		return domain.Requirement{}, err
	}
	kpiJSON, err := marshalOptional(req.KPIImpact)
	if err != nil {
		return domain.Requirement{}, err
	}
	actorsJSON, err := marshalOptionalSlice(req.Actors)
	if err != nil {
		return domain.Requirement{}, err
	}
	toolsJSON, err := marshalOptionalSlice(req.ShadowTools)
	if err != nil {
		return domain.Requirement{}, err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO requirements(`+requirementColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		req.ReqID, req.EngagementID, req.Title, req.Description, nullable(req.SourceType), string(tagsJSON),
		nullable(req.Stakeholder), nullableStringPtr(req.RawInput), req.Status, req.CreatedAt,
		nullableStringPtr(req.BusinessProcess), req.Priority, nullableStringPtr(req.Category), kpiJSON,
		req.ConfidenceScore, nullableStringPtr(req.CurrentStateRef), actorsJSON, toolsJSON,
		req.SignOffStatus, nullableStringPtr(req.SignOffBy), nullableStringPtr(req.SignOffAt),
		nullableStringPtr(req.MappingID), nullableStringPtr(req.FitAssessment))
	if err != nil {
		return domain.Requirement{}, fmt.Errorf("insert requirement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Requirement{}, err
	}
	return req, nil
}

// nextReqID returns REQ-NNN with NNN one past the highest existing suffix in
// the engagement. Suffixes of deleted rows are not reused.
func nextReqID(ctx context.Context, tx *sql.Tx, engagementID string) (string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT req_id FROM requirements WHERE engagement_id=?`, engagementID)
	if err != nil {
		return "", err
	}
	defer rows.Close()
	maxN := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		if _, suffix, ok := strings.Cut(id, "-"); ok {
			if n, err := strconv.Atoi(suffix); err == nil && n > maxN {
				maxN = n
			}
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("REQ-%03d", maxN+1), nil
}

// GetRequirement fetches one requirement by engagement and id.
func (r Repo) GetRequirement(ctx context.Context, engagementID, reqID string) (domain.Requirement, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+requirementColumns+` FROM requirements WHERE engagement_id=? AND req_id=?`,
		engagementID, reqID)
	return scanRequirement(row)
}

// ListRequirements returns all requirements for an engagement ordered by id.
func (r Repo) ListRequirements(ctx context.Context, engagementID string) ([]domain.Requirement, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+requirementColumns+` FROM requirements WHERE engagement_id=? ORDER BY req_id`,
		engagementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Requirement
	for rows.Next() {
		req, err := scanRequirementRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// RequirementUpdate is a partial field map for UpdateRequirement. Nil fields
// are left untouched.
type RequirementUpdate struct {
	Title           *string
	Description     *string
	Tags            *[]string
	Status          *string
	BusinessProcess *string
	Priority        *string
	Category        *string
	KPIImpact       *domain.KPIImpact
	ConfidenceScore *float64
	CurrentStateRef *string
	Actors          *[]domain.Actor
	ShadowTools     *[]string
	SignOffStatus   *string
	SignOffBy       *string
	SignOffAt       *string
	MappingID       *string
	FitAssessment   *string
}

// UpdateRequirement applies a partial update and returns the updated record.
func (r Repo) UpdateRequirement(ctx context.Context, engagementID, reqID string, u RequirementUpdate) (domain.Requirement, error) {
	var (
		fields []string
		args   []any
	)
	set := func(col string, v any) {
		fields = append(fields, col+"=?")
		args = append(args, v)
	}
	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Tags != nil {
		b, err := json.Marshal(*u.Tags)
		if err != nil {
			return domain.Requirement{}, err
		}
		set("tags_json", string(b))
	}
	if u.Status != nil {
		set("status", *u.Status)
	}
	if u.BusinessProcess != nil {
		set("business_process", nullable(*u.BusinessProcess))
	}
	if u.Priority != nil {
		set("priority", *u.Priority)
	}
	if u.Category != nil {
		set("category", nullable(*u.Category))
	}
	if u.KPIImpact != nil {
		b, err := json.Marshal(u.KPIImpact)
		if err != nil {
			return domain.Requirement{}, err
		}
		set("kpi_impact_json", string(b))
	}
	if u.ConfidenceScore != nil {
		set("confidence_score", *u.ConfidenceScore)
	}
	if u.CurrentStateRef != nil {
		set("current_state_ref", nullable(*u.CurrentStateRef))
	}
	if u.Actors != nil {
		b, err := json.Marshal(*u.Actors)
		if err != nil {
			return domain.Requirement{}, err
		}
		set("actors_json", string(b))
	}
	if u.ShadowTools != nil {
		b, err := json.Marshal(*u.ShadowTools)
		if err != nil {
			return domain.Requirement{}, err
		}
		set("shadow_tools_json", string(b))
	}
	if u.SignOffStatus != nil {
		set("sign_off_status", *u.SignOffStatus)
	}
	if u.SignOffBy != nil {
		set("sign_off_by", *u.SignOffBy)
	}
	if u.SignOffAt != nil {
		set("sign_off_at", *u.SignOffAt)
	}
	if u.MappingID != nil {
		set("mapping_id", nullable(*u.MappingID))
	}
	if u.FitAssessment != nil {
		set("fit_assessment", nullable(*u.FitAssessment))
	}
	if len(fields) == 0 {
		return r.GetRequirement(ctx, engagementID, reqID)
	}
	args = append(args, engagementID, reqID)
	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf(`UPDATE requirements SET %s WHERE engagement_id=? AND req_id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return domain.Requirement{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Requirement{}, ErrNotFound
	}
	return r.GetRequirement(ctx, engagementID, reqID)
}

// InsertGapResult persists one classification run. Results are never mutated.
func (r Repo) InsertGapResult(ctx context.Context, res domain.GapResult) (domain.GapResult, error) {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.CreatedAt == "" {
		res.CreatedAt = r.now().UTC().Format(time.RFC3339)
	}
	if res.Matches == nil {
		res.Matches = []domain.Match{}
	}
	matchesJSON, err := json.Marshal(res.Matches)
	if err != nil {
		return domain.GapResult{}, err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO gap_results(id,engagement_id,process_description,matches_json,req_id,tokens_used,created_at)
VALUES (?,?,?,?,?,?,?)`,
		res.ID, res.EngagementID, res.ProcessDescription, string(matchesJSON),
		nullableStringPtr(res.ReqID), nullableIntPtr(res.TokensUsed), res.CreatedAt)
	if err != nil {
		return domain.GapResult{}, fmt.Errorf("insert gap result: %w", err)
	}
	return res, nil
}

// ListGapResults returns all gap results for an engagement, most recent first.
func (r Repo) ListGapResults(ctx context.Context, engagementID string) ([]domain.GapResult, error) {
	return r.queryGapResults(ctx,
		`SELECT id,engagement_id,process_description,matches_json,req_id,tokens_used,created_at
FROM gap_results WHERE engagement_id=? ORDER BY created_at DESC, rowid DESC`, engagementID)
}

// ListGapResultsByReq returns gap results for one requirement, most recent first.
func (r Repo) ListGapResultsByReq(ctx context.Context, engagementID, reqID string) ([]domain.GapResult, error) {
	return r.queryGapResults(ctx,
		`SELECT id,engagement_id,process_description,matches_json,req_id,tokens_used,created_at
FROM gap_results WHERE engagement_id=? AND req_id=? ORDER BY created_at DESC, rowid DESC`, engagementID, reqID)
}

func (r Repo) queryGapResults(ctx context.Context, query string, args ...any) ([]domain.GapResult, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.GapResult
	for rows.Next() {
		var (
			res        domain.GapResult
			matchesRaw string
			reqID      sql.NullString
			tokens     sql.NullInt64
		)
		if err := rows.Scan(&res.ID, &res.EngagementID, &res.ProcessDescription, &matchesRaw, &reqID, &tokens, &res.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(matchesRaw), &res.Matches); err != nil {
			return nil, fmt.Errorf("gap result %s: %w", res.ID, err)
		}
		if reqID.Valid {
			res.ReqID = &reqID.String
		}
		if tokens.Valid {
			n := int(tokens.Int64)
			res.TokensUsed = &n
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequirement(row *sql.Row) (domain.Requirement, error) {
	req, err := scanRequirementFrom(row)
	if err == sql.ErrNoRows {
		return domain.Requirement{}, ErrNotFound
	}
	return req, err
}

func scanRequirementRows(rows *sql.Rows) (domain.Requirement, error) {
	return scanRequirementFrom(rows)
}

func scanRequirementFrom(s rowScanner) (domain.Requirement, error) {
	var (
		req                                       domain.Requirement
		sourceType, stakeholder                   sql.NullString
		rawInput, businessProcess, category       sql.NullString
		kpiJSON, currentStateRef, actorsJSON      sql.NullString
		toolsJSON, signOffBy, signOffAt           sql.NullString
		mappingID, fitAssessment                  sql.NullString
		tagsRaw                                   string
	)
	err := s.Scan(&req.ReqID, &req.EngagementID, &req.Title, &req.Description, &sourceType, &tagsRaw,
		&stakeholder, &rawInput, &req.Status, &req.CreatedAt,
		&businessProcess, &req.Priority, &category, &kpiJSON, &req.ConfidenceScore, &currentStateRef,
		&actorsJSON, &toolsJSON, &req.SignOffStatus, &signOffBy, &signOffAt, &mappingID, &fitAssessment)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal([]byte(tagsRaw), &req.Tags); err != nil {
		return req, fmt.Errorf("requirement %s tags: %w", req.ReqID, err)
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	req.SourceType = sourceType.String
	req.Stakeholder = stakeholder.String
	if rawInput.Valid {
		req.RawInput = &rawInput.String
	}
	if businessProcess.Valid {
		req.BusinessProcess = &businessProcess.String
	}
	if category.Valid {
		req.Category = &category.String
	}
	if kpiJSON.Valid && kpiJSON.String != "" {
		var kpi domain.KPIImpact
		if err := json.Unmarshal([]byte(kpiJSON.String), &kpi); err != nil {
			return req, fmt.Errorf("requirement %s kpi: %w", req.ReqID, err)
		}
		req.KPIImpact = &kpi
	}
	if currentStateRef.Valid {
		req.CurrentStateRef = &currentStateRef.String
	}
	if actorsJSON.Valid && actorsJSON.String != "" {
		if err := json.Unmarshal([]byte(actorsJSON.String), &req.Actors); err != nil {
			return req, fmt.Errorf("requirement %s actors: %w", req.ReqID, err)
		}
	}
	if toolsJSON.Valid && toolsJSON.String != "" {
		if err := json.Unmarshal([]byte(toolsJSON.String), &req.ShadowTools); err != nil {
			return req, fmt.Errorf("requirement %s shadow tools: %w", req.ReqID, err)
		}
	}
	if signOffBy.Valid {
		req.SignOffBy = &signOffBy.String
	}
	if signOffAt.Valid {
		req.SignOffAt = &signOffAt.String
	}
	if mappingID.Valid {
		req.MappingID = &mappingID.String
	}
	if fitAssessment.Valid {
		req.FitAssessment = &fitAssessment.String
	}
	return req, nil
}

// --- nullable helpers ---

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func nullableIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func marshalOptional(v *domain.KPIImpact) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func marshalOptionalSlice[T any](in []T) (any, error) {
	if len(in) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
