package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cdlconvert/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No conversion runs recorded")
					return nil
				}
				fmt.Fprint(out, renderTable(tableSpec{
					headers: []string{"Run", "Started", "Formats", "Converted", "Failed", "Skipped", "Outputs", "Dry run"},
					rows:    buildRunRows(runs),
					aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				}))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 lists every run)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the files of one run (a unique id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("run %q not found", args[0])
				}
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}

				out := cmd.OutOrStdout()
				summary := run.Tally()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(historyTimeLayout))
				fmt.Fprintf(out, "Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
				fmt.Fprintf(out, "Output:   %s\n", run.OutputDir)
				fmt.Fprintf(out, "Formats:  %s\n", strings.Join(run.Formats, ", "))
				fmt.Fprintf(out, "Dry run:  %s\n", yesNo(run.DryRun))
				if len(run.Files) == 0 {
					fmt.Fprintln(out, "No files recorded")
					return nil
				}
				fmt.Fprint(out, renderTable(tableSpec{
					headers: []string{"Input", "Format", "Status", "Corrections", "Result"},
					rows:    buildFileRows(run.Files),
					aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
					footer: []string{
						"Total", "",
						fmt.Sprintf("%d/%d/%d", summary.Converted, summary.Failed, summary.Skipped),
						"", plural(summary.Written, "output"),
					},
				}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %s older than %s\n", plural(int(removed), "run"), olderThan)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age beyond which runs are deleted")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", plural(int(removed), "run"))
				return nil
			})
		},
	}
}

func buildRunRows(runs []history.Summary) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format(historyTimeLayout),
			strings.Join(run.Formats, ","),
			strconv.Itoa(run.Converted),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Written),
			yesNo(run.DryRun),
		})
	}
	return rows
}

func buildFileRows(files []history.FileRecord) [][]string {
	rows := make([][]string, 0, len(files))
	for _, file := range files {
		result := file.Error
		if file.Status != history.StatusFailed {
			result = plural(len(file.Outputs), "output")
		}
		rows = append(rows, []string{
			file.Input,
			orDash(file.Format),
			string(file.Status),
			strconv.Itoa(file.Corrections),
			result,
		})
	}
	return rows
}
