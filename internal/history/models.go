package history

import "time"

// FileStatus is the outcome of converting one input.
type FileStatus string

const (
	StatusConverted FileStatus = "converted"
	StatusFailed    FileStatus = "failed"
	StatusSkipped   FileStatus = "skipped"
)

// FileRecord describes one input of a run.
type FileRecord struct {
	Input       string     `json:"input"`
	Format      string     `json:"format,omitempty"`
	Status      FileStatus `json:"status"`
	Corrections int        `json:"corrections"`
	Outputs     []string   `json:"outputs,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Run is one invocation of the converter.
type Run struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	DryRun     bool         `json:"dry_run"`
	OutputDir  string       `json:"output_dir"`
	Formats    []string     `json:"formats"`
	Files      []FileRecord `json:"files,omitempty"`
}

// Summary counts file outcomes for a run without loading its files.
type Summary struct {
	Run
	Converted int `json:"converted"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Written   int `json:"written"`
}

// Tally counts the outcomes in r.Files.
func (r *Run) Tally() Summary {
	summary := Summary{Run: *r}
	for _, file := range r.Files {
		switch file.Status {
		case StatusConverted:
			summary.Converted++
		case StatusFailed:
			summary.Failed++
		case StatusSkipped:
			summary.Skipped++
		}
		summary.Written += len(file.Outputs)
	}
	return summary
}
