package convert

import (
	"time"

	"cdlconvert/internal/cdl"
	"cdlconvert/internal/history"
)

// FileResult is the outcome for one input file.
type FileResult struct {
	Input       string
	Format      cdl.Format
	Status      history.FileStatus
	Corrections int
	Outputs     []string
	Warnings    []string
	Err         error
}

// Report summarizes a run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool
	OutputDir  string
	Formats    []cdl.Format
	Files      []FileResult
}

// Counts tallies file outcomes.
func (r *Report) Counts() (converted, failed, skipped int) {
	for _, file := range r.Files {
		switch file.Status {
		case history.StatusConverted:
			converted++
		case history.StatusFailed:
			failed++
		case history.StatusSkipped:
			skipped++
		}
	}
	return converted, failed, skipped
}

// Written counts output files, planned ones included for dry runs.
func (r *Report) Written() int {
	total := 0
	for _, file := range r.Files {
		total += len(file.Outputs)
	}
	return total
}

// HistoryRun converts the report into the record the history store keeps.
func (r *Report) HistoryRun() *history.Run {
	run := &history.Run{
		ID:         r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DryRun:     r.DryRun,
		OutputDir:  r.OutputDir,
	}
	for _, format := range r.Formats {
		run.Formats = append(run.Formats, string(format))
	}
	for _, file := range r.Files {
		record := history.FileRecord{
			Input:       file.Input,
			Format:      string(file.Format),
			Status:      file.Status,
			Corrections: file.Corrections,
			Outputs:     file.Outputs,
		}
		if file.Err != nil {
			record.Error = file.Err.Error()
		}
		run.Files = append(run.Files, record)
	}
	return run
}
