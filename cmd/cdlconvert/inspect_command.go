package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/formats"
)

type inspectedCorrection struct {
	ID           string `json:"id"`
	Ref          bool   `json:"ref,omitempty"`
	Unresolved   bool   `json:"unresolved,omitempty"`
	MediaRef     string `json:"media_ref,omitempty"`
	Slope        string `json:"slope,omitempty"`
	Offset       string `json:"offset,omitempty"`
	Power        string `json:"power,omitempty"`
	Saturation   string `json:"saturation,omitempty"`
	Descriptions int    `json:"descriptions"`
}

type inspectedFile struct {
	Path        string                `json:"path"`
	Format      cdl.Format            `json:"format"`
	Desc        []string              `json:"desc,omitempty"`
	InputDesc   string                `json:"input_desc,omitempty"`
	ViewingDesc string                `json:"viewing_desc,omitempty"`
	Corrections []inspectedCorrection `json:"corrections"`
	Warnings    []string              `json:"warnings,omitempty"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Print the color corrections found in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			parsed, err := formats.Parse(cdl.NewRegistry(), args[0], formats.TextOptions{Encoding: cfg.Convert.InputEncoding})
			if err != nil {
				return err
			}
			file := inspectResult(parsed, cfg.Convert.Precision)
			if jsonOutput {
				return writeJSON(cmd, file)
			}
			printInspectedFile(cmd.OutOrStdout(), file)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func inspectResult(parsed *formats.Result, precision int) inspectedFile {
	desc := parsed.Descriptions()
	file := inspectedFile{
		Path:        parsed.Path,
		Format:      parsed.Format,
		Desc:        desc.Desc,
		InputDesc:   desc.InputDesc,
		ViewingDesc: desc.ViewingDesc,
	}

	if parsed.DecisionList != nil {
		for _, decision := range parsed.DecisionList.Decisions {
			row := inspectedCorrection{
				ID:       decision.CorrectionID(),
				Ref:      decision.IsRef(),
				MediaRef: decision.MediaRef,
			}
			if cc := decision.Correction(); cc != nil {
				fillCorrection(&row, cc, precision)
			} else {
				row.Unresolved = true
			}
			file.Corrections = append(file.Corrections, row)
		}
	} else {
		for _, cc := range parsed.Corrections {
			row := inspectedCorrection{ID: cc.ID()}
			fillCorrection(&row, cc, precision)
			file.Corrections = append(file.Corrections, row)
		}
	}

	seen := make(map[*cdl.ColorCorrection]struct{}, len(parsed.Corrections))
	for _, cc := range parsed.Corrections {
		if _, ok := seen[cc]; ok {
			continue
		}
		seen[cc] = struct{}{}
		file.Warnings = append(file.Warnings, cc.SanityWarnings()...)
	}
	return file
}

func fillCorrection(row *inspectedCorrection, cc *cdl.ColorCorrection, precision int) {
	if cc.SOP != nil {
		row.Slope = cc.SOP.SlopeText(precision)
		row.Offset = cc.SOP.OffsetText(precision)
		row.Power = cc.SOP.PowerText(precision)
	}
	if cc.SAT != nil {
		row.Saturation = cc.SAT.SaturationText(precision)
	}
	row.Descriptions = len(cc.Desc)
}

func printInspectedFile(out io.Writer, file inspectedFile) {
	fmt.Fprintf(out, "File:        %s\n", file.Path)
	fmt.Fprintf(out, "Format:      %s\n", file.Format)
	for _, line := range file.Desc {
		fmt.Fprintf(out, "Description: %s\n", line)
	}
	if file.InputDesc != "" {
		fmt.Fprintf(out, "Input:       %s\n", file.InputDesc)
	}
	if file.ViewingDesc != "" {
		fmt.Fprintf(out, "Viewing:     %s\n", file.ViewingDesc)
	}
	if len(file.Corrections) == 0 {
		fmt.Fprintln(out, "No color corrections found")
		return
	}

	rows := make([][]string, 0, len(file.Corrections))
	for _, cc := range file.Corrections {
		id := cc.ID
		if cc.Ref {
			id += " (ref)"
		}
		slope := orDash(cc.Slope)
		if cc.Unresolved {
			slope = "unresolved"
		}
		rows = append(rows, []string{
			id,
			slope,
			orDash(cc.Offset),
			orDash(cc.Power),
			orDash(cc.Saturation),
			strconv.Itoa(cc.Descriptions),
		})
	}
	fmt.Fprint(out, renderTable(tableSpec{
		headers: []string{"ID", "Slope", "Offset", "Power", "Sat", "Desc"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	}))
	for _, warning := range file.Warnings {
		fmt.Fprintln(out, renderStatusLine("Check", statusWarn, warning, false))
	}
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
