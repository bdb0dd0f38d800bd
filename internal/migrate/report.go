package migrate

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
)

// ReportEntry maps one work item to the issue created for it
type ReportEntry struct {
	WorkItemID  int    `yaml:"work_item_id"`
	WorkItemURL string `yaml:"work_item_url"`
	Title       string `yaml:"title"`
	IssueNumber int    `yaml:"issue_number"`
	IssueURL    string `yaml:"issue_url"`
}

// Report is the audit record written after a run
type Report struct {
	GeneratedAt string        `yaml:"generated_at"`
	Created     int           `yaml:"created"`
	Closed      int           `yaml:"closed"`
	Tagged      int           `yaml:"tagged"`
	Linked      int           `yaml:"linked"`
	Skipped     int           `yaml:"skipped"`
	Items       []ReportEntry `yaml:"items"`
}

// NewReport builds the audit record for result
func NewReport(result *Result, now time.Time) *Report {
	return &Report{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Created:     result.Created,
		Closed:      result.Closed,
		Tagged:      result.Tagged,
		Linked:      result.Linked,
		Skipped:     result.Skipped,
		Items:       result.Entries,
	}
}

// WriteReport writes the work item to issue mapping of result as YAML
func WriteReport(path string, result *Result) error {
	data, err := yaml.Marshal(NewReport(result, time.Now()))
	if err != nil {
		return errors.FileError("write_report", "failed to encode migration report", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WithContextSafe(errors.FileError("write_report", "failed to write migration report", err), "path", path)
	}
	return nil
}
