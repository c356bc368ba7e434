package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"cdlconvert/internal/convert"
	"cdlconvert/internal/history"
)

// statusKind pairs the bracketed label of a status line with its colour.
type statusKind struct {
	label string
	color string
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var (
	statusInfo  = statusKind{label: "INFO", color: ansiBlue}
	statusOK    = statusKind{label: "OK", color: ansiGreen}
	statusWarn  = statusKind{label: "WARN", color: ansiYellow}
	statusError = statusKind{label: "ERROR", color: ansiRed}
)

const (
	statusLabelWidth = 24
	statusIndent     = "  "
)

// renderStatusLine lays out "  label:   [KIND] message" with the label padded
// so the brackets line up across a report.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + kind.label + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status)
	if colorize && kind.color != "" {
		return kind.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	title = "== " + strings.TrimSpace(title) + " =="
	lines := []string{title, strings.Repeat("-", len(title))}
	if colorize {
		for i := range lines {
			lines[i] = ansiBlue + lines[i] + ansiReset
		}
	}
	return lines
}

// fileStatusLine renders one input of a conversion report.
func fileStatusLine(file convert.FileResult, dryRun, colorize bool) string {
	label := displayName(file.Input)
	switch file.Status {
	case history.StatusConverted:
		verb := "written"
		if dryRun {
			verb = "planned"
		}
		message := fmt.Sprintf("%s, %d %s", plural(file.Corrections, "correction"), len(file.Outputs), verb)
		if len(file.Warnings) > 0 {
			message += fmt.Sprintf(" (%s)", plural(len(file.Warnings), "warning"))
			return renderStatusLine(label, statusWarn, message, colorize)
		}
		return renderStatusLine(label, statusOK, message, colorize)
	case history.StatusSkipped:
		return renderStatusLine(label, statusWarn, "no color corrections", colorize)
	default:
		message := "failed"
		if file.Err != nil {
			message = file.Err.Error()
		}
		return renderStatusLine(label, statusError, message, colorize)
	}
}

func plural(count int, noun string) string {
	if count != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%d %s", count, noun)
}

// shouldColorize is true only when w is a terminal.
func shouldColorize(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
