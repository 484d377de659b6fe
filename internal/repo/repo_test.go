package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitgap/internal/db"
	"fitgap/internal/domain"
	"fitgap/internal/migrate"
	"fitgap/internal/repo"
)

func newTestRepo(t *testing.T) repo.Repo {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo.Repo{DB: conn}
}

func TestReqIDAssignment(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	for i, want := range []string{"REQ-001", "REQ-002", "REQ-003"} {
		created, err := r.CreateRequirement(ctx, domain.Requirement{
			EngagementID: "eng-a",
			Title:        "req",
			ReqID:        "REQ-999", // caller-provided ids are ignored
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if created.ReqID != want {
			t.Fatalf("expected %s, got %s", want, created.ReqID)
		}
	}

	// sequences are engagement-scoped
	other, err := r.CreateRequirement(ctx, domain.Requirement{EngagementID: "eng-b", Title: "req"})
	if err != nil {
		t.Fatal(err)
	}
	if other.ReqID != "REQ-001" {
		t.Fatalf("other engagement must start at REQ-001, got %s", other.ReqID)
	}
}

func TestCreateRequirementDefaults(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	created, err := r.CreateRequirement(ctx, domain.Requirement{
		EngagementID: "eng-a",
		Title:        "req",
		Status:       "analysed", // forced back to open
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.Status != domain.StatusOpen {
		t.Fatalf("status must start open, got %s", created.Status)
	}
	if created.Priority != domain.PriorityMust || created.SignOffStatus != domain.SignOffDraft {
		t.Fatalf("defaults wrong: %+v", created)
	}
	if created.ConfidenceScore != 0.8 {
		t.Fatalf("confidence default wrong: %v", created.ConfidenceScore)
	}
	if _, err := time.Parse(time.RFC3339, created.CreatedAt); err != nil {
		t.Fatalf("created_at not RFC3339: %q", created.CreatedAt)
	}

	got, err := r.GetRequirement(ctx, "eng-a", created.ReqID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Fatalf("tags must round-trip as empty slice: %#v", got.Tags)
	}
}

func TestUpdateRequirement(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	created, err := r.CreateRequirement(ctx, domain.Requirement{EngagementID: "eng-a", Title: "req"})
	if err != nil {
		t.Fatal(err)
	}

	status := domain.StatusAnalysed
	tags := []string{"pain_point"}
	got, err := r.UpdateRequirement(ctx, "eng-a", created.ReqID, repo.RequirementUpdate{
		Status: &status,
		Tags:   &tags,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "analysed" || len(got.Tags) != 1 {
		t.Fatalf("partial update wrong: %+v", got)
	}
	if got.Title != "req" {
		t.Fatalf("untouched field changed: %+v", got)
	}

	_, err = r.UpdateRequirement(ctx, "eng-a", "REQ-999", repo.RequirementUpdate{Status: &status})
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGapResultOrdering(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	reqID := "REQ-001"

	// identical timestamps: insertion order breaks the tie
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r.Now = func() time.Time { return fixed }
	for _, desc := range []string{"first", "second", "third"} {
		if _, err := r.InsertGapResult(ctx, domain.GapResult{
			EngagementID:       "eng-a",
			ProcessDescription: desc,
			ReqID:              &reqID,
			Matches:            []domain.Match{{ID: "J58", Name: "General Ledger", Confidence: "HIGH"}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := r.ListGapResultsByReq(ctx, "eng-a", reqID)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ProcessDescription != "third" || results[2].ProcessDescription != "first" {
		t.Fatalf("latest-first ordering wrong: %+v", results)
	}
	if len(results[0].Matches) != 1 || results[0].Matches[0].ID != "J58" {
		t.Fatalf("matches did not round-trip: %+v", results[0].Matches)
	}
}
