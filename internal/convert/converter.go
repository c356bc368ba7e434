package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/formats"
	"cdlconvert/internal/history"
	"cdlconvert/internal/logging"
	"cdlconvert/internal/preflight"
)

// LockFileName is created in the output directory while a run writes to it.
const LockFileName = ".cdlconvert.lock"

// Recorder persists finished runs. *history.Store satisfies it.
type Recorder interface {
	RecordRun(ctx context.Context, run *history.Run) error
}

// Converter turns CDL inputs into the configured output formats.
type Converter struct {
	opts     Options
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
	newRunID func() string
}

// Option customizes a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder stores every finished run, dry runs included.
func WithRecorder(recorder Recorder) Option {
	return func(c *Converter) { c.recorder = recorder }
}

// New validates opts and returns a converter.
func New(opts Options, options ...Option) (*Converter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Converter{
		opts:     opts,
		logger:   logging.NewNop(),
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range options {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "convert")
	return c, nil
}

// Run converts every input found under paths. Per file failures are recorded
// in the report and do not fail the run unless HaltOnError is set; the error
// return is reserved for problems that stop the whole run.
func (c *Converter) Run(ctx context.Context, paths []string) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	report := &Report{
		RunID:     c.newRunID(),
		StartedAt: c.now(),
		DryRun:    c.opts.DryRun,
		OutputDir: c.opts.OutputDir,
		Formats:   c.opts.Formats,
	}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, c.logger)

	inputs, err := CollectInputs(paths, c.opts.OutputDir)
	if err != nil {
		return nil, err
	}

	if !c.opts.DryRun {
		unlock, err := c.prepareOutputDir()
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	logger.Info("conversion started",
		logging.Int("inputs", len(inputs)),
		logging.String(logging.FieldOutput, c.opts.OutputDir),
		logging.Bool("dry_run", c.opts.DryRun),
	)

	reg := cdl.NewRegistry()
	claimed := make(map[string]string)
	var runErr error
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		result := c.convertFile(logging.WithInput(ctx, input), reg, claimed, input)
		report.Files = append(report.Files, result)
		if result.Err != nil && c.opts.HaltOnError {
			runErr = fmt.Errorf("%w: %w", ErrHalted, result.Err)
			break
		}
	}
	report.FinishedAt = c.now()

	converted, failed, skipped := report.Counts()
	logger.Info("conversion finished",
		logging.Int("converted", converted),
		logging.Int("failed", failed),
		logging.Int("skipped", skipped),
		logging.Int("outputs", report.Written()),
		logging.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)

	if c.recorder != nil {
		// Recording uses its own context so a cancelled run is still kept.
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		if err := c.recorder.RecordRun(recordCtx, report.HistoryRun()); err != nil {
			logging.WarnWithContext(logger, "failed to record run history", "history_record",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run is missing from history"),
			)
		}
		cancel()
	}
	return report, runErr
}

// prepareOutputDir creates the output directory and, if configured, takes the
// run lock inside it. The returned func releases the lock.
func (c *Converter) prepareOutputDir() (func(), error) {
	check := preflight.CheckWritableTarget("Output directory", c.opts.OutputDir)
	if !check.Passed {
		return nil, fmt.Errorf("%w: %s", ErrOutputNotWritable, check.Detail)
	}
	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return nil, cdl.Wrap(cdl.ErrIO, c.opts.OutputDir, "create output directory", err)
	}
	if !c.opts.LockOutputDir {
		return func() {}, nil
	}

	lockPath := filepath.Join(c.opts.OutputDir, LockFileName)
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, lockPath)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn("failed to release output lock", logging.String("lock", lockPath), logging.Error(err))
		}
	}, nil
}

func (c *Converter) convertFile(ctx context.Context, reg *cdl.Registry, claimed map[string]string, input string) FileResult {
	logger := logging.WithContext(ctx, c.logger)
	result := FileResult{Input: input}
	if format, ok := cdl.FormatForPath(input); ok {
		result.Format = format
	}

	parsed, err := formats.Parse(reg, input, formats.TextOptions{Encoding: c.opts.InputEncoding})
	if err != nil {
		result.Status = history.StatusFailed
		result.Err = err
		logging.ErrorWithContext(logger, "failed to parse input", "parse_failed", logging.Error(err))
		return result
	}
	result.Format = parsed.Format

	corrections := uniqueCorrections(parsed.Corrections)
	result.Corrections = len(corrections)
	if len(corrections) == 0 {
		result.Status = history.StatusSkipped
		logging.WarnWithContext(logger, "input holds no color corrections", "empty_input",
			logging.String(logging.FieldImpact, "input skipped"),
		)
		return result
	}

	if c.opts.Check {
		for _, cc := range corrections {
			for _, warning := range cc.SanityWarnings() {
				result.Warnings = append(result.Warnings, warning)
				logging.WarnWithContext(logger, warning, "sanity_check",
					logging.String(logging.FieldCorrectionID, cc.ID()),
				)
			}
		}
	}

	fail := func(err error) FileResult {
		reg.Release(ownedBy(corrections, input)...)
		result.Status = history.StatusFailed
		result.Err = err
		result.Outputs = nil
		logging.ErrorWithContext(logger, "failed to convert input", "convert_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, errorHint(err)),
		)
		return result
	}

	outputs := c.plan(parsed, corrections)
	if err := c.claim(claimed, input, outputs); err != nil {
		return fail(err)
	}
	for _, out := range outputs {
		result.Outputs = append(result.Outputs, out.path)
	}

	if !c.opts.DryRun {
		for _, out := range outputs {
			if err := out.write(out.path); err != nil {
				return fail(err)
			}
			logger.Debug("output written",
				logging.String(logging.FieldOutput, out.path),
				logging.String(logging.FieldFormat, string(out.format)),
			)
		}
	}

	result.Status = history.StatusConverted
	logger.Info("input converted",
		logging.String(logging.FieldFormat, string(parsed.Format)),
		logging.Int("corrections", len(corrections)),
		logging.Int("outputs", len(outputs)),
	)
	return result
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, ErrOutputExists):
		return "pass --overwrite or choose another output directory"
	case errors.Is(err, ErrOutputCollision):
		return "two corrections share an output name; use .ccc output instead"
	case errors.Is(err, cdl.ErrIO):
		return "check permissions on the output directory"
	}
	return "check the input file"
}
