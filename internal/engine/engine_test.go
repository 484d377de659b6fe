package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"fitgap/internal/catalog"
	"fitgap/internal/db"
	"fitgap/internal/domain"
	"fitgap/internal/engine"
	"fitgap/internal/llm"
	"fitgap/internal/migrate"
)

type fakeResponse struct {
	content string
	err     error
}

type fakeProvider struct {
	responses []fakeResponse
	calls     int
}

func (f *fakeProvider) Complete(_ context.Context, system, prompt string) (llm.Completion, error) {
	i := f.calls
	f.calls++
	if len(f.responses) == 0 {
		return llm.Completion{}, errors.New("no scripted response")
	}
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	r := f.responses[i]
	if r.err != nil {
		return llm.Completion{}, r.err
	}
	return llm.Completion{Content: r.content, InputTokens: 100, OutputTokens: 20}, nil
}

func scripted(contents ...string) *fakeProvider {
	f := &fakeProvider{}
	for _, c := range contents {
		f.responses = append(f.responses, fakeResponse{content: c})
	}
	return f
}

type testEnv struct {
	Engine   engine.Engine
	Provider *fakeProvider
	Ctx      context.Context
}

func newTestEnv(t *testing.T, provider *fakeProvider) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}
	if provider == nil {
		provider = &fakeProvider{}
	}
	eng := engine.New(conn, cat, provider, zap.NewNop())
	eng.Now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return testEnv{Engine: eng, Provider: provider, Ctx: context.Background()}
}

func createReq(t *testing.T, env testEnv, req domain.Requirement) domain.Requirement {
	t.Helper()
	if req.EngagementID == "" {
		req.EngagementID = "eng-1"
	}
	if req.Title == "" {
		req.Title = "some requirement"
	}
	created, err := env.Engine.CreateRequirement(env.Ctx, req, "tester")
	if err != nil {
		t.Fatalf("create requirement: %v", err)
	}
	return created
}

func TestClassifyPersistsGapResult(t *testing.T) {
	env := newTestEnv(t, scripted(`Here are the matches:
[{"id":"J58","confidence":"high","rationale":"ledger fits"},{"id":"J60","rationale":"cash"}]
Hope this helps.`))
	out, err := env.Engine.Classify(env.Ctx, engine.ClassifyInput{
		EngagementID: "eng-1",
		Description:  "we post journal entries by hand",
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !out.Saved {
		t.Fatalf("expected result to be saved")
	}
	if len(out.Result.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(out.Result.Matches))
	}
	if out.Result.Matches[0].ID != "J58" || out.Result.Matches[0].Confidence != "HIGH" {
		t.Fatalf("unexpected top match: %+v", out.Result.Matches[0])
	}
	if out.Result.Matches[0].Name == "" || out.Result.Matches[0].Category == "" {
		t.Fatalf("match not enriched from catalogue: %+v", out.Result.Matches[0])
	}
	// absent confidence defaults to MEDIUM
	if out.Result.Matches[1].Confidence != "MEDIUM" {
		t.Fatalf("expected MEDIUM default, got %s", out.Result.Matches[1].Confidence)
	}
	if out.Result.TokensUsed == nil || *out.Result.TokensUsed != 120 {
		t.Fatalf("expected 120 tokens, got %v", out.Result.TokensUsed)
	}
	results, err := env.Engine.Repo.ListGapResults(env.Ctx, "eng-1")
	if err != nil || len(results) != 1 {
		t.Fatalf("expected 1 stored result, got %d (%v)", len(results), err)
	}
}

func TestClassifyInputValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	var ve engine.ValidationError

	_, err := env.Engine.Classify(env.Ctx, engine.ClassifyInput{EngagementID: "eng-1"})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty input, got %v", err)
	}
	_, err = env.Engine.Classify(env.Ctx, engine.ClassifyInput{
		EngagementID: "eng-1", Description: "x", ReqID: "REQ-001",
	})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for both inputs, got %v", err)
	}
	_, err = env.Engine.Classify(env.Ctx, engine.ClassifyInput{
		EngagementID: "eng-1", Description: "x", Limit: -1,
	})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for negative limit, got %v", err)
	}
	if env.Provider.calls != 0 {
		t.Fatalf("validation failures must not reach the provider, got %d calls", env.Provider.calls)
	}

	var nf engine.NotFoundError
	_, err = env.Engine.Classify(env.Ctx, engine.ClassifyInput{EngagementID: "eng-1", ReqID: "REQ-999"})
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestClassifyDropsUnknownIDsAndAppliesLimit(t *testing.T) {
	reply := `[
{"id":"ZZZ","confidence":"HIGH","rationale":"made up"},
{"id":"J58","confidence":"LOW","rationale":"a"},
{"id":"J59","confidence":"LOW","rationale":"b"}]`

	// truncate to limit first, then drop unknown ids within it
	env := newTestEnv(t, scripted(reply))
	out, err := env.Engine.Classify(env.Ctx, engine.ClassifyInput{
		EngagementID: "eng-1",
		Description:  "close the books",
		Limit:        2,
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(out.Result.Matches) != 1 || out.Result.Matches[0].ID != "J58" {
		t.Fatalf("expected only J58 to survive, got %+v", out.Result.Matches)
	}

	// a hallucinated id consumes its slot; later valid entries must not refill
	env = newTestEnv(t, scripted(reply))
	out, err = env.Engine.Classify(env.Ctx, engine.ClassifyInput{
		EngagementID: "eng-1",
		Description:  "close the books",
		Limit:        1,
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(out.Result.Matches) != 0 {
		t.Fatalf("expected no matches, got %+v", out.Result.Matches)
	}
}

func TestClassifyHandlesBracketsInsideStrings(t *testing.T) {
	env := newTestEnv(t, scripted("```json\n"+
		`[{"id":"J58","confidence":"HIGH","rationale":"covers steps [1,2] and [3]"}]`+
		"\n```\nAnything else?"))
	out, err := env.Engine.Classify(env.Ctx, engine.ClassifyInput{
		EngagementID: "eng-1",
		Description:  "ledger",
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(out.Result.Matches) != 1 || out.Result.Matches[0].Rationale != "covers steps [1,2] and [3]" {
		t.Fatalf("rationale mangled: %+v", out.Result.Matches)
	}
}

func TestClassifyProviderAndExtractionErrors(t *testing.T) {
	env := newTestEnv(t, &fakeProvider{responses: []fakeResponse{{err: errors.New("boom")}}})
	var pe engine.ProviderError
	_, err := env.Engine.Classify(env.Ctx, engine.ClassifyInput{EngagementID: "eng-1", Description: "x"})
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}

	env = newTestEnv(t, scripted("I could not find anything useful."))
	var xe engine.ExtractionError
	_, err = env.Engine.Classify(env.Ctx, engine.ClassifyInput{EngagementID: "eng-1", Description: "x"})
	if !errors.As(err, &xe) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestClassifyDoesNotChangeStatus(t *testing.T) {
	env := newTestEnv(t, scripted(`[{"id":"J58","confidence":"HIGH","rationale":"r"}]`))
	req := createReq(t, env, domain.Requirement{Description: "manual postings"})

	out, err := env.Engine.Classify(env.Ctx, engine.ClassifyInput{EngagementID: "eng-1", ReqID: req.ReqID})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if out.Result.ReqID == nil || *out.Result.ReqID != req.ReqID {
		t.Fatalf("gap result not linked to requirement: %+v", out.Result.ReqID)
	}
	got, err := env.Engine.GetRequirement(env.Ctx, "eng-1", req.ReqID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusOpen {
		t.Fatalf("single classification must not change status, got %s", got.Status)
	}
}

func TestSignOffChain(t *testing.T) {
	env := newTestEnv(t, nil)
	req := createReq(t, env, domain.Requirement{})

	got, err := env.Engine.SignOff(env.Ctx, "eng-1", req.ReqID, engine.LevelSME, "sme@corp")
	if err != nil {
		t.Fatalf("sme sign-off: %v", err)
	}
	if got.SignOffStatus != domain.SignOffSMEApproved {
		t.Fatalf("expected sme_approved, got %s", got.SignOffStatus)
	}
	if got.SignOffBy == nil || *got.SignOffBy != "sme@corp" || got.SignOffAt == nil {
		t.Fatalf("transition must stamp signer and time: %+v", got)
	}

	// sme again is a no-op: no new stamp
	again, err := env.Engine.SignOff(env.Ctx, "eng-1", req.ReqID, engine.LevelSME, "other@corp")
	if err != nil {
		t.Fatalf("idempotent sme: %v", err)
	}
	if again.SignOffStatus != domain.SignOffSMEApproved || *again.SignOffBy != "sme@corp" {
		t.Fatalf("no-op must not rewrite the record: %+v", again)
	}

	got, err = env.Engine.SignOff(env.Ctx, "eng-1", req.ReqID, engine.LevelOwner, "owner@corp")
	if err != nil {
		t.Fatalf("owner sign-off: %v", err)
	}
	if got.SignOffStatus != domain.SignOffConfirmed {
		t.Fatalf("owner on sme_approved must confirm, got %s", got.SignOffStatus)
	}

	// owner on confirmed is a no-op
	got, err = env.Engine.SignOff(env.Ctx, "eng-1", req.ReqID, engine.LevelOwner, "late@corp")
	if err != nil || got.SignOffStatus != domain.SignOffConfirmed || *got.SignOffBy != "owner@corp" {
		t.Fatalf("owner no-op broken: %+v (%v)", got, err)
	}
}

func TestSignOffOwnerFromDraft(t *testing.T) {
	env := newTestEnv(t, nil)
	req := createReq(t, env, domain.Requirement{})
	got, err := env.Engine.SignOff(env.Ctx, "eng-1", req.ReqID, engine.LevelOwner, "owner@corp")
	if err != nil {
		t.Fatalf("owner sign-off: %v", err)
	}
	if got.SignOffStatus != domain.SignOffOwnerApproved {
		t.Fatalf("expected owner_approved, got %s", got.SignOffStatus)
	}
}

func TestSignOffValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	var ve engine.ValidationError
	// level checked before the store is touched: the requirement does not exist
	_, err := env.Engine.SignOff(env.Ctx, "eng-1", "REQ-999", "ceo", "x")
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for bad level, got %v", err)
	}
	var nf engine.NotFoundError
	_, err = env.Engine.SignOff(env.Ctx, "eng-1", "REQ-999", engine.LevelSME, "x")
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAnalyseAllSweep(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{content: `[{"id":"J58","confidence":"HIGH","rationale":"a"}]`},
		{err: errors.New("rate limited")},
		{content: `[{"id":"J60","confidence":"LOW","rationale":"c"}]`},
	}}
	env := newTestEnv(t, provider)
	r1 := createReq(t, env, domain.Requirement{Title: "first", Description: "d1"})
	r2 := createReq(t, env, domain.Requirement{Title: "second", Description: "d2"})
	r3 := createReq(t, env, domain.Requirement{Title: "third", Description: "d3"})

	out, err := env.Engine.AnalyseAll(env.Ctx, "eng-1", "tester")
	if err != nil {
		t.Fatalf("analyse-all: %v", err)
	}
	if out.Processed != 2 {
		t.Fatalf("expected 2 processed, got %d", out.Processed)
	}
	if len(out.Results) != 2 || out.Results[0].ReqID != r1.ReqID || out.Results[1].ReqID != r3.ReqID {
		t.Fatalf("unexpected sweep results: %+v", out.Results)
	}
	if out.Results[0].TopMatchID != "J58" || out.Results[0].TopConfidence != "HIGH" {
		t.Fatalf("top match fields missing: %+v", out.Results[0])
	}

	for _, tc := range []struct {
		id   string
		want string
	}{
		{r1.ReqID, domain.StatusAnalysed},
		{r2.ReqID, domain.StatusOpen},
		{r3.ReqID, domain.StatusAnalysed},
	} {
		got, err := env.Engine.GetRequirement(env.Ctx, "eng-1", tc.id)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.id, tc.want, got.Status)
		}
	}
}

func TestAnalyseAllEmptyEngagement(t *testing.T) {
	env := newTestEnv(t, nil)
	out, err := env.Engine.AnalyseAll(env.Ctx, "eng-empty", "tester")
	if err != nil {
		t.Fatalf("analyse-all: %v", err)
	}
	if out.Processed != 0 || len(out.Results) != 0 {
		t.Fatalf("expected empty sweep, got %+v", out)
	}
	if env.Provider.calls != 0 {
		t.Fatalf("empty sweep must not call the provider")
	}
}

func TestAnalyseAllSkipsAnalysed(t *testing.T) {
	env := newTestEnv(t, scripted(`[{"id":"J58","confidence":"HIGH","rationale":"a"}]`))
	createReq(t, env, domain.Requirement{Title: "open one", Description: "d"})
	createReq(t, env, domain.Requirement{Title: "done one", Description: "d"})
	if _, err := env.Engine.AnalyseAll(env.Ctx, "eng-1", "tester"); err != nil {
		t.Fatal(err)
	}
	env.Provider.calls = 0
	out, err := env.Engine.AnalyseAll(env.Ctx, "eng-1", "tester")
	if err != nil {
		t.Fatal(err)
	}
	if out.Processed != 0 || env.Provider.calls != 0 {
		t.Fatalf("second sweep must be a no-op, got processed=%d calls=%d", out.Processed, env.Provider.calls)
	}
}

func TestExtractFromTranscript(t *testing.T) {
	env := newTestEnv(t, scripted(`[
{"title":"Fix invoice matching","description":"Invoices matched by hand","tags":["Pain_Point","made_up","manual_step"]},
{"title":"","description":"no title, should be skipped"},
{"title":"Bank rec automation","description":"Daily rec in a spreadsheet","tags":["workaround"],"business_process":"Cash Management","priority":"Should-Have"}]`))

	out, err := env.Engine.ExtractFromTranscript(env.Ctx, engine.ExtractInput{
		EngagementID: "eng-1",
		Stakeholder:  "Dana",
		Transcript:   "long interview text",
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if out.Created != 2 || len(out.Requirements) != 2 {
		t.Fatalf("expected 2 created, got %d", out.Created)
	}
	first := out.Requirements[0]
	if first.ReqID != "REQ-001" || first.SourceType != "Conversation" || first.Stakeholder != "Dana" {
		t.Fatalf("unexpected first requirement: %+v", first)
	}
	if first.RawInput == nil || *first.RawInput != "long interview text" {
		t.Fatalf("raw input must carry the transcript")
	}
	if len(first.Tags) != 2 || first.Tags[0] != "pain_point" || first.Tags[1] != "manual_step" {
		t.Fatalf("tag vocabulary filter broken: %v", first.Tags)
	}
	second := out.Requirements[1]
	if second.Priority != "Should-Have" || second.BusinessProcess == nil || *second.BusinessProcess != "Cash Management" {
		t.Fatalf("candidate fields lost: %+v", second)
	}
}

func TestExtractValidationAndErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	var ve engine.ValidationError
	_, err := env.Engine.ExtractFromTranscript(env.Ctx, engine.ExtractInput{EngagementID: "eng-1", Transcript: "   "})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	env = newTestEnv(t, scripted("no structured data here"))
	var xe engine.ExtractionError
	_, err = env.Engine.ExtractFromTranscript(env.Ctx, engine.ExtractInput{EngagementID: "eng-1", Transcript: "t"})
	if !errors.As(err, &xe) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestSessionTurn(t *testing.T) {
	env := newTestEnv(t, scripted(`{"reply":"Tell me more about the handoff.","extracted":{"ready":false},"follow_up_questions":["Who owns the spreadsheet?"]}`))
	out, err := env.Engine.SessionTurn(env.Ctx, engine.SessionInput{
		EngagementID: "eng-1",
		Stakeholder:  "Dana",
		Message:      "We retype orders into the ERP.",
	})
	if err != nil {
		t.Fatalf("session turn: %v", err)
	}
	if out.Extracted || out.CreatedReqID != nil {
		t.Fatalf("nothing should be created while not ready: %+v", out)
	}
	if out.Reply == "" || len(out.FollowUpQuestions) != 1 {
		t.Fatalf("reply lost: %+v", out)
	}

	env = newTestEnv(t, scripted(`{"reply":"Captured, thanks.","extracted":{"ready":true,"title":"Order entry automation","description":"Orders are retyped","tags":["manual_step"]},"follow_up_questions":[]}`))
	out, err = env.Engine.SessionTurn(env.Ctx, engine.SessionInput{
		EngagementID:    "eng-1",
		Stakeholder:     "Dana",
		BusinessProcess: "Order Management",
		Message:         "That is everything.",
	})
	if err != nil {
		t.Fatalf("session turn: %v", err)
	}
	if !out.Extracted || out.CreatedReqID == nil {
		t.Fatalf("expected a created requirement: %+v", out)
	}
	req, err := env.Engine.GetRequirement(env.Ctx, "eng-1", *out.CreatedReqID)
	if err != nil {
		t.Fatal(err)
	}
	if req.BusinessProcess == nil || *req.BusinessProcess != "Order Management" {
		t.Fatalf("session context must backfill the process: %+v", req)
	}
}

func TestSummaryView(t *testing.T) {
	env := newTestEnv(t, scripted(`[{"id":"J58","confidence":"HIGH","rationale":"a"}]`))
	createReq(t, env, domain.Requirement{Title: "a", Description: "d", Tags: []string{"pain_point", "manual_step"}})
	createReq(t, env, domain.Requirement{Title: "b", Description: "d", Tags: []string{"pain_point"}})
	if _, err := env.Engine.AnalyseAll(env.Ctx, "eng-1", "tester"); err != nil {
		t.Fatal(err)
	}
	createReq(t, env, domain.Requirement{Title: "c", Description: "d"})

	sum, err := env.Engine.Summary(env.Ctx, "eng-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalRequirements != 3 || sum.TotalAnalysed != 2 {
		t.Fatalf("counts wrong: %+v", sum)
	}
	if sum.RequirementsByStatus["analysed"] != 2 || sum.RequirementsByStatus["open"] != 1 {
		t.Fatalf("status histogram wrong: %v", sum.RequirementsByStatus)
	}
	if sum.RequirementsByTag["pain_point"] != 2 || sum.RequirementsByTag["manual_step"] != 1 {
		t.Fatalf("tag histogram wrong: %v", sum.RequirementsByTag)
	}
	if len(sum.GapResultsSummary) != 2 || sum.GapResultsSummary[0].TopMatchID != "J58" {
		t.Fatalf("gap summary wrong: %+v", sum.GapResultsSummary)
	}
}

func TestProcessMirrorView(t *testing.T) {
	env := newTestEnv(t, nil)
	createReq(t, env, domain.Requirement{Title: "multi", Tags: []string{"pain_point", "workaround"}})
	createReq(t, env, domain.Requirement{Title: "plain"})

	mirror, err := env.Engine.ProcessMirror(env.Ctx, "eng-1")
	if err != nil {
		t.Fatalf("process mirror: %v", err)
	}
	if mirror.Summary.TotalRequirements != 2 {
		t.Fatalf("total wrong: %+v", mirror.Summary)
	}
	if len(mirror.ByTag) != 2 {
		t.Fatalf("a two-tag requirement must appear in two groups: %v", mirror.ByTag)
	}
	if mirror.ByTag["pain_point"][0].Title != "multi" || mirror.ByTag["workaround"][0].Title != "multi" {
		t.Fatalf("grouping wrong: %v", mirror.ByTag)
	}
	if len(mirror.Untagged) != 1 || mirror.Untagged[0].Title != "plain" {
		t.Fatalf("untagged wrong: %v", mirror.Untagged)
	}
	if mirror.GeneratedAt == "" {
		t.Fatalf("generated_at missing")
	}
}

func TestSignOffStatusView(t *testing.T) {
	env := newTestEnv(t, nil)
	p := "Order Management"
	createReq(t, env, domain.Requirement{Title: "a", BusinessProcess: &p})
	b := createReq(t, env, domain.Requirement{Title: "b", BusinessProcess: &p})
	createReq(t, env, domain.Requirement{Title: "c"})
	if _, err := env.Engine.SignOff(env.Ctx, "eng-1", b.ReqID, engine.LevelSME, "sme"); err != nil {
		t.Fatal(err)
	}

	sum, err := env.Engine.SignOffStatus(env.Ctx, "eng-1")
	if err != nil {
		t.Fatalf("sign-off status: %v", err)
	}
	if sum.Total != 3 || sum.Draft != 2 || sum.SMEApproved != 1 {
		t.Fatalf("overall counts wrong: %+v", sum.SignOffCounts)
	}
	om := sum.ByProcess["Order Management"]
	if om.Total != 2 || om.SMEApproved != 1 {
		t.Fatalf("per-process counts wrong: %+v", om)
	}
	if sum.ByProcess["Unclassified"].Total != 1 {
		t.Fatalf("missing process must fall back to Unclassified: %v", sum.ByProcess)
	}
}

func TestKPISummaryView(t *testing.T) {
	env := newTestEnv(t, nil)
	p := "Financial Close"
	createReq(t, env, domain.Requirement{
		Title:           "close faster",
		BusinessProcess: &p,
		KPIImpact:       &domain.KPIImpact{Metric: "close duration", Current: "10d", Target: "4d", Unit: "days"},
	})
	createReq(t, env, domain.Requirement{
		Title:     "orphan kpi",
		KPIImpact: &domain.KPIImpact{Metric: "touch time", Target: "0"},
	})
	createReq(t, env, domain.Requirement{Title: "no kpi"})

	sum, err := env.Engine.KPISummary(env.Ctx, "eng-1")
	if err != nil {
		t.Fatalf("kpi summary: %v", err)
	}
	if sum.TotalWithKPI != 2 {
		t.Fatalf("expected 2 with KPI, got %d", sum.TotalWithKPI)
	}
	fc := sum.ByProcess["Financial Close"]
	if len(fc) != 1 || fc[0].KPIImpact.Target != "4d" {
		t.Fatalf("kpi entry wrong: %+v", fc)
	}
	if len(sum.ByProcess["Unclassified"]) != 1 {
		t.Fatalf("Unclassified fallback wrong: %v", sum.ByProcess)
	}
}

func TestTraceabilityView(t *testing.T) {
	env := newTestEnv(t, scripted(`[{"id":"J58","confidence":"HIGH","rationale":"r"}]`))
	ref := "flowchart-7"
	req := createReq(t, env, domain.Requirement{
		Title:           "stop retyping journals",
		Description:     "journals retyped from spreadsheets",
		Stakeholder:     "Dana",
		Tags:            []string{"pain_point", "manual_step"},
		CurrentStateRef: &ref,
		ShadowTools:     []string{"Excel macro"},
		Actors: []domain.Actor{
			{Role: "GL accountant", Type: "formal"},
			{Role: "the intern", Type: "informal"},
		},
	})
	if _, err := env.Engine.Classify(env.Ctx, engine.ClassifyInput{EngagementID: "eng-1", ReqID: req.ReqID}); err != nil {
		t.Fatal(err)
	}

	tr, err := env.Engine.Traceability(env.Ctx, "eng-1", req.ReqID)
	if err != nil {
		t.Fatalf("traceability: %v", err)
	}
	if tr.Requirement.ReqID != req.ReqID {
		t.Fatalf("wrong requirement: %+v", tr.Requirement)
	}
	if tr.AsIsEvidence.CurrentStateRef == nil || *tr.AsIsEvidence.CurrentStateRef != "flowchart-7" {
		t.Fatalf("evidence missing: %+v", tr.AsIsEvidence)
	}
	if tr.GapAnalysis.TotalAnalyses != 1 || len(tr.GapAnalysis.Matches) != 1 {
		t.Fatalf("gap trace wrong: %+v", tr.GapAnalysis)
	}
	// who_asked carries the stakeholder and the formal actor roles only
	who := tr.AnswerTo.WhoAsked
	if !strings.Contains(who, "Dana") || !strings.Contains(who, "GL accountant") {
		t.Fatalf("who_asked must name stakeholder and formal actors: %q", who)
	}
	if strings.Contains(who, "the intern") {
		t.Fatalf("informal actors must stay out of who_asked: %q", who)
	}
	// what_problem is built from the pain-style tags and the shadow tools
	problem := tr.AnswerTo.WhatProblem
	if !strings.Contains(problem, "pain_point") && !strings.Contains(problem, "manual_step") {
		t.Fatalf("what_problem must mention the pain tags: %q", problem)
	}
	if !strings.Contains(problem, "Excel macro") {
		t.Fatalf("what_problem must mention the shadow tools: %q", problem)
	}

	var nf engine.NotFoundError
	if _, err := env.Engine.Traceability(env.Ctx, "eng-1", "REQ-999"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestTemplates(t *testing.T) {
	for _, d := range []string{"finance", "Finance", "HR"} {
		tpls, err := engine.Templates(d)
		if err != nil {
			t.Fatalf("%s: %v", d, err)
		}
		if len(tpls) == 0 {
			t.Fatalf("%s: no templates", d)
		}
	}
	var ve engine.ValidationError
	if _, err := engine.Templates("astrology"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
