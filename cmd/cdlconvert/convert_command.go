package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cdlconvert/internal/config"
	"cdlconvert/internal/convert"
	"cdlconvert/internal/history"
	"cdlconvert/internal/logging"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var formatFlags []string
	var destFlag string
	var overwrite bool
	var haltOnError bool
	var precision int
	var dryRun bool
	var check bool

	cmd := &cobra.Command{
		Use:   "convert <path>...",
		Short: "Convert CDL files and directories into .cc, .ccc or .cdl",
		Long: `Convert parses every input (files as given, directories recursively for
.cc, .ccc, .cdl, .ale, .flex and .flx files) and writes each requested
output format into the destination directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := convert.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("output") {
				if opts.Formats, err = convert.ParseFormats(formatFlags); err != nil {
					return err
				}
			}
			if flags.Changed("dest") {
				if opts.OutputDir, err = config.ExpandPath(destFlag); err != nil {
					return fmt.Errorf("resolve destination: %w", err)
				}
			}
			if flags.Changed("overwrite") {
				opts.Overwrite = overwrite
			}
			if flags.Changed("halt-on-error") {
				opts.HaltOnError = haltOnError
			}
			if flags.Changed("precision") {
				opts.Precision = precision
			}
			opts.DryRun = dryRun
			opts.Check = check

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			options := []convert.Option{convert.WithLogger(logger)}
			store, err := history.Open(cfg)
			switch {
			case err == nil:
				defer store.Close()
				options = append(options, convert.WithRecorder(store))
			case !errors.Is(err, history.ErrDisabled):
				logging.WarnWithContext(logger, "conversion history unavailable", "history_open",
					logging.Error(err),
					logging.String(logging.FieldImpact, "run is not recorded"),
				)
			}

			conv, err := convert.New(opts, options...)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, runErr := conv.Run(runCtx, args)
			if report != nil {
				out := cmd.OutOrStdout()
				printConvertReport(out, report, shouldColorize(out))
			}
			if runErr != nil {
				return runErr
			}
			if _, failed, _ := report.Counts(); failed > 0 {
				return fmt.Errorf("%d of %d inputs failed to convert", failed, len(report.Files))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formatFlags, "output", "o", nil, "Output formats to write: cc, ccc, cdl (repeatable or comma separated)")
	cmd.Flags().StringVarP(&destFlag, "dest", "d", "", "Destination directory (defaults to paths.output_dir)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace outputs that already exist")
	cmd.Flags().BoolVar(&haltOnError, "halt-on-error", false, "Stop at the first input that fails")
	cmd.Flags().IntVar(&precision, "precision", -1, "Decimal places for written values (-1 keeps the shortest exact form)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse inputs and list outputs without writing anything")
	cmd.Flags().BoolVar(&check, "check", false, "Warn about negative slope, power or saturation")
	return cmd
}

func printConvertReport(out io.Writer, report *convert.Report, colorize bool) {
	title := "Conversion"
	if report.DryRun {
		title = "Conversion (dry run)"
	}
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
	for _, file := range report.Files {
		fmt.Fprintln(out, fileStatusLine(file, report.DryRun, colorize))
		for _, warning := range file.Warnings {
			fmt.Fprintf(out, "%s    %s\n", statusIndent, warning)
		}
	}

	converted, failed, skipped := report.Counts()
	kind := statusOK
	switch {
	case failed > 0:
		kind = statusError
	case skipped > 0:
		kind = statusWarn
	}
	summary := fmt.Sprintf("%d converted, %d failed, %d skipped, %s to %s",
		converted, failed, skipped, plural(report.Written(), "output"), report.OutputDir)
	fmt.Fprintln(out, renderStatusLine("Run "+shortID(report.RunID), kind, summary, colorize))
}

// displayName shows inputs relative to the working directory when they live
// under it.
func displayName(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
