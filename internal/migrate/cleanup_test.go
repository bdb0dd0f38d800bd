package migrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/config"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/testutil"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

func preserveConfig(titles, labels []string, numbers []int) *config.PreserveConfig {
	cfg := &config.PreserveConfig{}
	cfg.Issues.PreserveByTitle = titles
	cfg.Issues.PreserveByLabel = labels
	cfg.Issues.PreserveByNumber = numbers
	return cfg
}

func TestShouldPreserveIssue(t *testing.T) {
	cfg := preserveConfig([]string{"Keep me", "/^RFC-\\d+/"}, []string{"pinned"}, []int{42})

	tests := []struct {
		name     string
		issue    types.Issue
		expected bool
	}{
		{name: "exact title", issue: types.Issue{Title: "Keep me"}, expected: true},
		{name: "regex title", issue: types.Issue{Title: "RFC-12 storage"}, expected: true},
		{name: "regex needs slashes", issue: types.Issue{Title: "^RFC-\\d+"}, expected: false},
		{name: "label", issue: types.Issue{Title: "x", Labels: []string{"Bug", "Pinned"}}, expected: true},
		{name: "number", issue: types.Issue{Number: 42}, expected: true},
		{name: "no match", issue: types.Issue{Number: 7, Title: "Task", Labels: []string{"Task"}}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldPreserveIssue(cfg, tt.issue); got != tt.expected {
				t.Errorf("ShouldPreserveIssue(%+v) = %v, want %v", tt.issue, got, tt.expected)
			}
		})
	}

	if ShouldPreserveIssue(nil, types.Issue{Title: "Keep me"}) {
		t.Error("nil configuration should preserve nothing")
	}
}

func TestIsMatchOrRegexInvalidPattern(t *testing.T) {
	if isMatchOrRegex("abc", "/[unclosed/") {
		t.Error("invalid regex should not match")
	}
}

func TestDeleteAllIssues(t *testing.T) {
	ctx := context.Background()
	client := testutil.NewIssueClientMock()
	client.AddExisting("Keep me")
	client.AddExisting("Migrated task", "Task")
	client.AddExisting("Pinned", "pinned")
	client.AddExisting("Migrated bug", "Bug")

	logger := &testutil.MockLogger{}
	summary, err := DeleteAllIssues(ctx, client, CleanupOptions{
		PreserveConfig: preserveConfig([]string{"Keep me"}, []string{"pinned"}, nil),
	}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Listed != 4 || summary.Deleted != 2 || summary.Preserved != 2 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if len(client.Deleted) != 2 || client.Deleted[0] != "I_2" || client.Deleted[1] != "I_4" {
		t.Errorf("unexpected deletions %v", client.Deleted)
	}
	if _, ok := client.Issues[1]; !ok {
		t.Error("preserved issue was deleted")
	}
}

func TestDeleteAllIssuesDryRun(t *testing.T) {
	client := testutil.NewIssueClientMock()
	client.AddExisting("one")
	client.AddExisting("two")
	logger := &testutil.MockLogger{}

	summary, err := DeleteAllIssues(context.Background(), client, CleanupOptions{DryRun: true}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Deleted != 2 {
		t.Errorf("expected 2 would-be deletions, got %d", summary.Deleted)
	}
	if len(client.Deleted) != 0 || len(client.Issues) != 2 {
		t.Error("dry run must not delete issues")
	}

	wouldDelete := 0
	for _, msg := range logger.InfoCalls {
		if len(msg) > 12 && msg[:12] == "Would delete" {
			wouldDelete++
		}
	}
	if wouldDelete != 2 {
		t.Errorf("expected 2 'Would delete' messages, got %d", wouldDelete)
	}
}

func TestDeleteAllIssuesPartialFailure(t *testing.T) {
	client := testutil.NewIssueClientMock()
	client.AddExisting("one")
	client.AddExisting("two")
	client.AddExisting("three")
	client.FailDelete["I_1"] = fmt.Errorf("forbidden")
	client.FailDelete["I_3"] = fmt.Errorf("forbidden")

	summary, err := DeleteAllIssues(context.Background(), client, CleanupOptions{}, &testutil.MockLogger{})
	if !errors.IsPartialFailure(err) {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if summary.Deleted != 1 || len(summary.Errors) != 2 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestDeleteAllIssuesSingleFailureIsPartial(t *testing.T) {
	client := testutil.NewIssueClientMock()
	client.AddExisting("one")
	client.FailDelete["I_1"] = fmt.Errorf("forbidden")

	summary, err := DeleteAllIssues(context.Background(), client, CleanupOptions{}, &testutil.MockLogger{})
	if !errors.IsPartialFailure(err) {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if len(summary.Errors) != 1 {
		t.Errorf("expected one error, got %v", summary.Errors)
	}
}

func TestDeleteAllIssuesListFailure(t *testing.T) {
	client := testutil.NewIssueClientMock()
	client.FailList = testutil.ErrorConfig{ShouldError: true}

	_, err := DeleteAllIssues(context.Background(), client, CleanupOptions{}, &testutil.MockLogger{})
	if !errors.IsOperation(err, "list_issues") {
		t.Errorf("expected list_issues error, got %v", err)
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	result := &Result{
		Created: 1,
		Linked:  1,
		Entries: []ReportEntry{{
			WorkItemID:  7,
			WorkItemURL: "https://dev.azure.com/contoso/web/_workitems/edit/7",
			Title:       "Fix login",
			IssueNumber: 3,
			IssueURL:    "https://github.com/octo/migrated/issues/3",
		}},
	}

	if err := WriteReport(path, result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}
	if report.Created != 1 || report.Linked != 1 || report.GeneratedAt == "" {
		t.Errorf("unexpected report header %+v", report)
	}
	if len(report.Items) != 1 || report.Items[0] != result.Entries[0] {
		t.Errorf("unexpected report items %+v", report.Items)
	}
}

func TestWriteReportUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.yaml")
	err := WriteReport(path, &Result{})
	if !errors.IsLayer(err, errors.LayerFile) {
		t.Errorf("expected file error, got %v", err)
	}
}
