package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/config"
	"cdlconvert/internal/formats"
	"cdlconvert/internal/history"
	"cdlconvert/internal/testsupport"
)

func newTestConverter(t *testing.T, cfg *config.Config, mutate func(*Options), options ...Option) *Converter {
	t.Helper()

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if mutate != nil {
		mutate(&opts)
	}
	conv, err := New(opts, options...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return conv
}

func TestRunWritesEveryFormat(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFormats("cc", "ccc", "cdl"))
	inputDir := filepath.Join(testsupport.BaseDir(cfg), "in")
	testsupport.WriteFixture(t, inputDir, "grade.ccc", testsupport.CollectionXML(
		testsupport.CorrectionXML("sh010", "0.9"),
		testsupport.CorrectionXML("sh020", "1.1"),
	))

	report, err := newTestConverter(t, cfg, nil).Run(context.Background(), []string{inputDir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Files) != 1 {
		t.Fatalf("expected 1 file result, got %d", len(report.Files))
	}
	file := report.Files[0]
	if file.Status != history.StatusConverted || file.Corrections != 2 || file.Format != cdl.FormatCCC {
		t.Fatalf("unexpected result: %+v", file)
	}

	out := cfg.Paths.OutputDir
	want := []string{
		filepath.Join(out, "sh010.cc"),
		filepath.Join(out, "sh020.cc"),
		filepath.Join(out, "grade.ccc"),
		filepath.Join(out, "grade.cdl"),
	}
	if diff := cmp.Diff(want, file.Outputs); diff != "" {
		t.Fatalf("outputs mismatch (-want +got):\n%s", diff)
	}
	for _, path := range want {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}

	ccc, err := formats.ParseCCC(cdl.NewRegistry(), filepath.Join(out, "grade.ccc"))
	if err != nil {
		t.Fatalf("ParseCCC output: %v", err)
	}
	if diff := cmp.Diff([]string{"sh010", "sh020"}, ccc.IDs()); diff != "" {
		t.Fatalf("collection ids mismatch (-want +got):\n%s", diff)
	}
	list, err := formats.ParseCDL(cdl.NewRegistry(), filepath.Join(out, "grade.cdl"))
	if err != nil {
		t.Fatalf("ParseCDL output: %v", err)
	}
	if len(list.Decisions) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(list.Decisions))
	}
	if _, err := os.Stat(filepath.Join(out, LockFileName)); err != nil {
		t.Fatalf("expected lock file in output dir: %v", err)
	}
}

func TestRunDuplicateIDFailsLaterFile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	inputDir := filepath.Join(testsupport.BaseDir(cfg), "in")
	testsupport.WriteFixture(t, inputDir, "a.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh010", "1")))
	testsupport.WriteFixture(t, inputDir, "b.ccc", testsupport.CollectionXML(
		testsupport.CorrectionXML("sh020", "1"),
		testsupport.CorrectionXML("sh010", "1"),
	))
	testsupport.WriteFixture(t, inputDir, "c.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh020", "1")))

	report, err := newTestConverter(t, cfg, nil).Run(context.Background(), []string{inputDir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Files) != 3 {
		t.Fatalf("expected 3 file results, got %d", len(report.Files))
	}
	if report.Files[0].Status != history.StatusConverted {
		t.Fatalf("a.ccc: expected converted, got %+v", report.Files[0])
	}
	if !errors.Is(report.Files[1].Err, cdl.ErrDuplicateID) {
		t.Fatalf("b.ccc: expected ErrDuplicateID, got %v", report.Files[1].Err)
	}
	// b.ccc rolled back, so its sh020 is free again for c.ccc.
	if report.Files[2].Status != history.StatusConverted {
		t.Fatalf("c.ccc: expected converted, got %+v", report.Files[2])
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "b.ccc")); !os.IsNotExist(err) {
		t.Fatalf("expected no output for b.ccc, stat err=%v", err)
	}
	converted, failed, skipped := report.Counts()
	if converted != 2 || failed != 1 || skipped != 0 {
		t.Fatalf("unexpected counts converted=%d failed=%d skipped=%d", converted, failed, skipped)
	}
}

func TestRunHaltOnError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	inputDir := filepath.Join(testsupport.BaseDir(cfg), "in")
	testsupport.WriteFixture(t, inputDir, "a_bad.ccc", "<ColorCorrectionCollection><ColorCorrection")
	testsupport.WriteFixture(t, inputDir, "b_good.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh010", "1")))

	report, err := newTestConverter(t, cfg, func(o *Options) { o.HaltOnError = true }).Run(context.Background(), []string{inputDir})
	if !errors.Is(err, ErrHalted) || !errors.Is(err, cdl.ErrParse) {
		t.Fatalf("expected ErrHalted wrapping ErrParse, got %v", err)
	}
	if report == nil || len(report.Files) != 1 {
		t.Fatalf("expected the run to stop after the first file, got %+v", report)
	}
}

func TestRunRefusesExistingOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	inputDir := filepath.Join(testsupport.BaseDir(cfg), "in")
	input := testsupport.WriteFixture(t, inputDir, "grade.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh010", "1")))
	existing := testsupport.WriteFixture(t, cfg.Paths.OutputDir, "grade.ccc", "keep me")

	report, err := newTestConverter(t, cfg, nil).Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !errors.Is(report.Files[0].Err, ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", report.Files[0].Err)
	}
	if got := testsupport.ReadFile(t, existing); got != "keep me" {
		t.Fatalf("existing output was modified: %q", got)
	}

	report, err = newTestConverter(t, cfg, func(o *Options) { o.Overwrite = true }).Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run with overwrite: %v", err)
	}
	if report.Files[0].Status != history.StatusConverted {
		t.Fatalf("expected converted with overwrite, got %+v", report.Files[0])
	}
	if got := testsupport.ReadFile(t, existing); !strings.Contains(got, `id="sh010"`) {
		t.Fatalf("output not replaced: %q", got)
	}
}

func TestRunOutputCollision(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	inputDir := filepath.Join(testsupport.BaseDir(cfg), "in")
	testsupport.WriteFixture(t, filepath.Join(inputDir, "reel1"), "grade.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh010", "1")))
	testsupport.WriteFixture(t, filepath.Join(inputDir, "reel2"), "grade.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh020", "1")))

	report, err := newTestConverter(t, cfg, nil).Run(context.Background(), []string{inputDir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Files[0].Status != history.StatusConverted {
		t.Fatalf("first grade.ccc: expected converted, got %+v", report.Files[0])
	}
	if !errors.Is(report.Files[1].Err, ErrOutputCollision) {
		t.Fatalf("second grade.ccc: expected ErrOutputCollision, got %v", report.Files[1].Err)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled(), testsupport.WithFormats("cc"))
	inputDir := filepath.Join(testsupport.BaseDir(cfg), "in")
	testsupport.WriteFixture(t, inputDir, "grade.ccc", testsupport.CollectionXML(
		testsupport.CorrectionXML("sh010", "1"),
		testsupport.CorrectionXML("sh020", "1"),
	))

	report, err := newTestConverter(t, cfg, func(o *Options) { o.DryRun = true }).Run(context.Background(), []string{inputDir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.DryRun || report.Written() != 2 {
		t.Fatalf("expected 2 planned outputs on a dry run, got %+v", report)
	}
	if _, err := os.Stat(cfg.Paths.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("dry run created the output directory, stat err=%v", err)
	}
}

func TestRunLockedOutputDir(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	input := testsupport.WriteFixture(t, testsupport.BaseDir(cfg), "grade.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh010", "1")))
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	held := flock.New(filepath.Join(cfg.Paths.OutputDir, LockFileName))
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("take lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err := newTestConverter(t, cfg, nil).Run(context.Background(), []string{input})
	if !errors.Is(err, ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}

	_, err = newTestConverter(t, cfg, func(o *Options) { o.LockOutputDir = false }).Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run without locking: %v", err)
	}
}

func TestRunCheckReportsSanityWarnings(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	input := testsupport.WriteFixture(t, testsupport.BaseDir(cfg), "grade.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh010", "-0.5")))

	report, err := newTestConverter(t, cfg, nil).Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Files[0].Warnings) != 0 {
		t.Fatalf("expected no warnings without check, got %v", report.Files[0].Warnings)
	}

	report, err = newTestConverter(t, cfg, func(o *Options) {
		o.Check = true
		o.Overwrite = true
	}).Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run with check: %v", err)
	}
	warnings := report.Files[0].Warnings
	if len(warnings) != 1 || !strings.Contains(warnings[0], "negative saturation") {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if report.Files[0].Status != history.StatusConverted {
		t.Fatalf("warnings must not fail the file: %+v", report.Files[0])
	}
}

func TestRunSkipsEmptyInput(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	input := testsupport.WriteFixture(t, testsupport.BaseDir(cfg), "empty.ccc", testsupport.CollectionXML())

	report, err := newTestConverter(t, cfg, nil).Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Files[0].Status != history.StatusSkipped || len(report.Files[0].Outputs) != 0 {
		t.Fatalf("expected skipped with no outputs, got %+v", report.Files[0])
	}
}

func TestRunDecisionListReferencesEarlierFile(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled(), testsupport.WithFormats("cc", "cdl"))
	inputDir := filepath.Join(testsupport.BaseDir(cfg), "in")
	testsupport.WriteFixture(t, inputDir, "a_grades.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh010", "1")))
	testsupport.WriteFixture(t, inputDir, "b_edit.cdl", `<ColorDecisionList xmlns="urn:ASC:CDL:v1.01">
<ColorDecision><ColorCorrectionRef ref="sh010"/></ColorDecision>
</ColorDecisionList>`)

	report, err := newTestConverter(t, cfg, nil).Run(context.Background(), []string{inputDir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, file := range report.Files {
		if file.Status != history.StatusConverted {
			t.Fatalf("%s: expected converted, got %+v", file.Input, file)
		}
	}
	want := []string{filepath.Join(cfg.Paths.OutputDir, "b_edit.cdl")}
	if diff := cmp.Diff(want, report.Files[1].Outputs); diff != "" {
		t.Fatalf("decision list outputs mismatch (-want +got):\n%s", diff)
	}
	got := testsupport.ReadFile(t, want[0])
	if !strings.Contains(got, `<ColorCorrectionRef ref="sh010"`) {
		t.Fatalf("reference not preserved:\n%s", got)
	}
}

type recorderFunc func(ctx context.Context, run *history.Run) error

func (f recorderFunc) RecordRun(ctx context.Context, run *history.Run) error { return f(ctx, run) }

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	inputDir := filepath.Join(testsupport.BaseDir(cfg), "in")
	testsupport.WriteFixture(t, inputDir, "a.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh010", "1")))
	testsupport.WriteFixture(t, inputDir, "b.ccc", "not xml")

	conv := newTestConverter(t, cfg, nil, WithRecorder(store))
	conv.newRunID = func() string { return "run-0001" }
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	conv.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	if _, err := conv.Run(context.Background(), []string{inputDir}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	run, err := store.GetRun(context.Background(), "run-0001")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	summary := run.Tally()
	if summary.Converted != 1 || summary.Failed != 1 || summary.Written != 1 {
		t.Fatalf("unexpected history summary: %+v", summary)
	}
	if run.Files[1].Error == "" {
		t.Fatalf("expected the failed file to carry its error")
	}
	if got := run.FinishedAt.Sub(run.StartedAt); got != time.Second {
		t.Fatalf("expected 1s run, got %s", got)
	}
}

func TestRunSurvivesRecorderFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	input := testsupport.WriteFixture(t, testsupport.BaseDir(cfg), "grade.ccc", testsupport.CollectionXML(testsupport.CorrectionXML("sh010", "1")))

	called := false
	recorder := recorderFunc(func(ctx context.Context, run *history.Run) error {
		called = true
		return errors.New("disk full")
	})
	report, err := newTestConverter(t, cfg, nil, WithRecorder(recorder)).Run(context.Background(), []string{input})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !called || report.Files[0].Status != history.StatusConverted {
		t.Fatalf("expected recorder call and converted file, called=%v report=%+v", called, report)
	}
}

func TestRunNoInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	empty := filepath.Join(testsupport.BaseDir(cfg), "empty")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := newTestConverter(t, cfg, nil).Run(context.Background(), []string{empty}); !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
}
