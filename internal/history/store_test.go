package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"cdlconvert/internal/history"
	"cdlconvert/internal/testsupport"
)

func sampleRun(id string, started time.Time) *history.Run {
	return &history.Run{
		ID:         id,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		OutputDir:  "/tmp/out",
		Formats:    []string{"cc", "ccc"},
		Files: []history.FileRecord{
			{Input: "a.ccc", Format: "ccc", Status: history.StatusConverted, Corrections: 2, Outputs: []string{"/tmp/out/x.cc", "/tmp/out/a.ccc"}},
			{Input: "b.cdl", Format: "cdl", Status: history.StatusFailed, Error: "parse error: duplicate id"},
			{Input: "c.ale", Format: "ale", Status: history.StatusSkipped},
		},
	}
}

func TestRecordAndGetRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	run := sampleRun("11111111-aaaa-4000-8000-000000000001", started)
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if diff := cmp.Diff(run, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("stored run differs (-want +got):\n%s", diff)
	}

	byPrefix, err := store.GetRun(ctx, "11111111")
	if err != nil {
		t.Fatalf("GetRun by prefix failed: %v", err)
	}
	if byPrefix.ID != run.ID {
		t.Fatalf("unexpected prefix match: %q", byPrefix.ID)
	}
}

func TestGetRunNotFoundAndAmbiguous(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	if _, err := store.GetRun(ctx, "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	now := time.Now()
	for _, id := range []string{"abc-1", "abc-2"} {
		if err := store.RecordRun(ctx, sampleRun(id, now)); err != nil {
			t.Fatalf("RecordRun %s failed: %v", id, err)
		}
	}
	if _, err := store.GetRun(ctx, "abc"); err == nil {
		t.Fatal("expected ambiguous prefix error")
	}
	if _, err := store.GetRun(ctx, "abc_"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected LIKE wildcards to be escaped, got %v", err)
	}
}

func TestListRunsNewestFirstWithCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if err := store.RecordRun(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}
	empty := &history.Run{ID: "empty", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour), DryRun: true}
	if err := store.RecordRun(ctx, empty); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := store.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	if diff := cmp.Diff([]string{"empty", "third", "second"}, ids); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
	if !runs[0].DryRun || runs[0].Converted != 0 || runs[0].Written != 0 {
		t.Fatalf("unexpected empty run summary: %+v", runs[0])
	}
	third := runs[1]
	if third.Converted != 1 || third.Failed != 1 || third.Skipped != 1 || third.Written != 2 {
		t.Fatalf("unexpected counts: %+v", third)
	}
	want := sampleRun("third", base.Add(2*time.Minute)).Tally()
	if third.Converted != want.Converted || third.Written != want.Written {
		t.Fatalf("sql counts disagree with Tally: %+v vs %+v", third, want)
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(all))
	}
}

func TestPruneAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new"} {
		if err := store.RecordRun(ctx, sampleRun(id, base.AddDate(0, 0, i*30))); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	removed, err := store.Prune(ctx, base.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 run pruned, got %d", removed)
	}
	if _, err := store.GetRun(ctx, "old"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected pruned run to be gone, got %v", err)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 run cleared, got %d", cleared)
	}
	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs after clear, got %d", len(runs))
	}
}

func TestRecordRunRejectsDuplicateID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	run := sampleRun("dup", time.Now())
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if err := store.RecordRun(ctx, run); err == nil {
		t.Fatal("expected error recording the same run twice")
	}
	got, err := store.GetRun(ctx, "dup")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if len(got.Files) != len(run.Files) {
		t.Fatalf("failed insert leaked files: got %d", len(got.Files))
	}
}

func TestOpenDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	if _, err := history.Open(cfg); !errors.Is(err, history.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := history.OpenPath(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}

	reopened, err := history.OpenPath(filepath.Join(t.TempDir(), "fresh.db"))
	if err != nil {
		t.Fatalf("OpenPath of fresh db failed: %v", err)
	}
	if reopened.Path() == "" {
		t.Fatal("expected path to be recorded")
	}
	reopened.Close()
}
