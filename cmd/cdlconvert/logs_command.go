package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cdlconvert/internal/logging"
	"cdlconvert/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var query logs.Query
	var lines int
	var follow bool
	var raw bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show entries from the cdlconvert log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.LogDir == "" {
				return errors.New("no log directory configured")
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()
			emit := func(entries []logs.Entry) {
				for _, entry := range entries {
					if raw {
						fmt.Fprintln(out, entry.Raw)
					} else {
						fmt.Fprintln(out, entry.Format())
					}
				}
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			result, err := logs.Tail(runCtx, path, logs.TailOptions{Offset: -1, Limit: lines, Query: query})
			if err != nil {
				return err
			}
			emit(result.Entries)
			if !follow {
				if len(result.Entries) == 0 {
					fmt.Fprintln(out, "No matching log entries")
				}
				return nil
			}

			offset := result.Offset
			for {
				result, err := logs.Tail(runCtx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second, Query: query})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if err != nil {
					return err
				}
				emit(result.Entries)
				offset = result.Offset
			}
		},
	}

	cmd.Flags().StringVar(&query.RunID, "run", "", "Only entries of this run (a unique id prefix is enough)")
	cmd.Flags().StringVar(&query.Component, "component", "", "Only entries from this component")
	cmd.Flags().StringVar(&query.Level, "level", "", "Minimum level to show (debug, info, warn, error)")
	cmd.Flags().StringVar(&query.Search, "search", "", "Only entries containing this text")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of entries to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries until interrupted")
	cmd.Flags().BoolVar(&raw, "json", false, "Print the raw JSON lines")
	return cmd
}
