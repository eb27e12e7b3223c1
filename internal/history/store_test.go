package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"cathub/internal/media"
	"cathub/internal/metadata"
	"cathub/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(id string, started time.Time) pipeline.Report {
	return pipeline.Report{
		RunID:          id,
		StartedAt:      started,
		FinishedAt:     started.Add(3 * time.Second),
		InputDir:       "/srv/processed",
		OutputDir:      "/srv/sources",
		MetadataPath:   "/srv/metadata.json",
		MetadataStatus: metadata.StatusLoaded,
		Outcomes: []pipeline.Outcome{
			{Source: "cat.mp4", Output: "cat.webm", Kind: media.KindVideo, Action: pipeline.ActionEncodeVideo, Status: pipeline.StatusOK, Registered: true, Bytes: 2048, Elapsed: 1500 * time.Millisecond},
			{Source: "dog.jpg", Output: "dog.webp", Kind: media.KindConvertibleImage, Action: pipeline.ActionEncodeImage, Status: pipeline.StatusFailed, Error: "exit status 1", ErrorCategory: "external_tool"},
			{Source: "notes.txt", Action: pipeline.ActionSkip, Status: pipeline.StatusSkipped, Detail: "unsupported extension"},
		},
		Pruned:       []string{"old.webp"},
		Dropped:      []string{"old.webp"},
		Files:        []string{"cat.webm"},
		BytesWritten: 2048,
	}
}

func TestRecordAndGetRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := store.RecordRun(ctx, sampleReport("0f8e2b6a-1111-4000-8000-000000000001", started), nil); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	run, err := store.GetRun(ctx, "0f8e2b6a-1111-4000-8000-000000000001")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil {
		t.Fatal("expected run")
	}
	if run.Status != RunSucceeded {
		t.Fatalf("status = %s", run.Status)
	}
	if run.Encoded != 2 || run.Skipped != 1 || run.Failed != 1 || run.Files != 1 {
		t.Fatalf("unexpected counts: %+v", run)
	}
	if run.BytesWritten != 2048 || run.MetadataStatus != "loaded" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if !reflect.DeepEqual(run.Pruned, []string{"old.webp"}) || !reflect.DeepEqual(run.Dropped, []string{"old.webp"}) {
		t.Fatalf("pruned/dropped = %v / %v", run.Pruned, run.Dropped)
	}
	if !run.StartedAt.Equal(started) || run.Duration() != 3*time.Second {
		t.Fatalf("timing = %v %v", run.StartedAt, run.Duration())
	}

	byPrefix, err := store.GetRun(ctx, "0f8e2b6a")
	if err != nil || byPrefix == nil || byPrefix.ID != run.ID {
		t.Fatalf("prefix lookup = %+v, %v", byPrefix, err)
	}

	missing, err := store.GetRun(ctx, "ffffffff")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v, %v", missing, err)
	}
}

func TestGetRunAmbiguousPrefix(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	if err := store.RecordRun(ctx, sampleReport("abc-1", now), nil); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordRun(ctx, sampleReport("abc-2", now.Add(time.Minute)), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetRun(ctx, "abc"); !errors.Is(err, ErrAmbiguousID) {
		t.Fatalf("expected ErrAmbiguousID, got %v", err)
	}
}

func TestRunOutcomesPreserveOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.RecordRun(ctx, sampleReport("run-1", time.Now()), nil); err != nil {
		t.Fatal(err)
	}

	results, err := store.RunOutcomes(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunOutcomes: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	first := results[0]
	if first.Source != "cat.mp4" || first.Kind != "video" || !first.Registered || first.Elapsed != 1500*time.Millisecond {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if results[1].ErrorCategory != "external_tool" || results[1].Status != "failed" {
		t.Fatalf("unexpected failure result: %+v", results[1])
	}
	if results[2].Output != "" || results[2].Detail != "unsupported extension" {
		t.Fatalf("unexpected skip result: %+v", results[2])
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := store.RecordRun(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Hour)), nil); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all runs, got %d (%v)", len(all), err)
	}
}

func TestRecordRunStatuses(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	failed := sampleReport("failed-run", time.Now())
	if err := store.RecordRun(ctx, failed, errors.New("remove stale output: permission denied")); err != nil {
		t.Fatal(err)
	}
	created := pipeline.Report{RunID: "created-run", StartedAt: time.Now(), InputCreated: true, InputDir: "in", OutputDir: "out", MetadataPath: "m.json"}
	if err := store.RecordRun(ctx, created, nil); err != nil {
		t.Fatal(err)
	}

	run, err := store.GetRun(ctx, "failed-run")
	if err != nil || run.Status != RunFailed || run.ErrorMessage == "" {
		t.Fatalf("failed run = %+v, %v", run, err)
	}
	run, err = store.GetRun(ctx, "created-run")
	if err != nil || run.Status != RunInputCreated || run.MetadataStatus != "" {
		t.Fatalf("created run = %+v, %v", run, err)
	}
}

func TestRecordRunRequiresID(t *testing.T) {
	store := openTestStore(t)
	if err := store.RecordRun(context.Background(), pipeline.Report{}, nil); err == nil {
		t.Fatal("expected error for missing run id")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.RecordRun(context.Background(), sampleReport("persisted", time.Now()), nil); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	var count int
	if err := reopened.db.QueryRow("SELECT COUNT(1) FROM runs").Scan(&count); err != nil && !errors.Is(err, sql.ErrNoRows) {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected persisted run, got %d", count)
	}
}
