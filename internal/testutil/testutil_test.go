package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/azuredevops"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

func TestErrorConfig(t *testing.T) {
	tests := []struct {
		name        string
		config      ErrorConfig
		defaultMsg  string
		expectError bool
		expectedMsg string
	}{
		{
			name:        "no error configured",
			config:      ErrorConfig{ShouldError: false},
			defaultMsg:  "default error",
			expectError: false,
		},
		{
			name:        "error with custom message",
			config:      ErrorConfig{ShouldError: true, ErrorMessage: "custom error"},
			defaultMsg:  "default error",
			expectError: true,
			expectedMsg: "custom error",
		},
		{
			name:        "error with default message",
			config:      ErrorConfig{ShouldError: true},
			defaultMsg:  "default error",
			expectError: true,
			expectedMsg: "default error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.GetErrorOrDefault(tt.defaultMsg)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got nil")
				} else if err.Error() != tt.expectedMsg {
					t.Errorf("Expected error message '%s', got '%s'", tt.expectedMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestWorkItemClientMockQueryAppliesFilter(t *testing.T) {
	factory := NewTestDataFactory()
	open := factory.CreateWorkItem(3, "", `web\ui`)
	closed := factory.CreateWorkItem(1, "", "web")
	closed.State = "Done"
	tagged := factory.CreateWorkItem(2, "", "web")
	tagged.Tags = []string{"migrated-to-github"}
	elsewhere := factory.CreateWorkItem(4, "", "ops")

	mock := NewWorkItemClientMock(open, closed, tagged, elsewhere)
	filter := types.QueryFilter{AreaPath: "web", MigratedTag: "migrated-to-github"}

	refs, err := mock.QueryWorkItems(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 1 || refs[0].ID != 3 {
		t.Errorf("expected only work item 3, got %+v", refs)
	}

	filter.IncludeClosed = true
	refs, _ = mock.QueryWorkItems(context.Background(), filter)
	if len(refs) != 2 || refs[0].ID != 1 || refs[1].ID != 3 {
		t.Errorf("expected work items 1 and 3 in order, got %+v", refs)
	}
}

func TestWorkItemClientMockTagPatch(t *testing.T) {
	item := NewTestDataFactory().CreateWorkItem(1, "", "web")
	mock := NewWorkItemClientMock(item)

	err := mock.UpdateField(context.Background(), 1, azuredevops.OpAdd, azuredevops.TagsFieldPath, "a; migrated-to-github")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !item.HasTag("migrated-to-github") || len(mock.Patches) != 1 {
		t.Errorf("tag patch not applied: tags=%v patches=%v", item.Tags, mock.Patches)
	}
}

func TestWorkItemClientMockReturnsCopies(t *testing.T) {
	item := NewTestDataFactory().CreateWorkItem(1, "", "web")
	mock := NewWorkItemClientMock(item)

	fetched, err := mock.GetWorkItem(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fetched.Title = "changed"
	if item.Title == "changed" {
		t.Error("GetWorkItem should return a copy")
	}
	if len(fetched.Raw) == 0 {
		t.Error("expected raw payload to be populated")
	}

	if _, err := mock.GetWorkItem(context.Background(), 99); err == nil {
		t.Error("expected error for unknown work item")
	}
}

func TestIssueClientMockLifecycle(t *testing.T) {
	mock := NewIssueClientMock()
	ctx := context.Background()

	issue, err := mock.CreateIssue(ctx, &types.IssueInput{Title: "one", Body: "body", Labels: []string{"Task"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issue.Number != 1 || issue.URL != "https://github.com/octo/migrated/issues/1" {
		t.Errorf("unexpected issue %+v", issue)
	}

	if err := mock.UpdateIssueBody(ctx, 1, "new"); err != nil || mock.Issues[1].Body != "new" {
		t.Errorf("update failed: %v", err)
	}
	if err := mock.CreateComment(ctx, 1, "c"); err != nil || len(mock.Comments[1]) != 1 {
		t.Errorf("comment failed: %v", err)
	}
	if err := mock.CloseIssue(ctx, 1); err != nil || mock.Issues[1].State != "closed" {
		t.Errorf("close failed: %v", err)
	}
	if err := mock.UpdateIssueBody(ctx, 7, "x"); err == nil {
		t.Error("expected error for unknown issue")
	}

	mock.FailUpdate[1] = fmt.Errorf("boom")
	if err := mock.UpdateIssueBody(ctx, 1, "x"); err == nil {
		t.Error("expected configured update failure")
	}

	if err := mock.DeleteIssue(ctx, "I_1"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	issues, _ := mock.ListIssues(ctx)
	if len(issues) != 0 {
		t.Errorf("expected no issues after delete, got %d", len(issues))
	}
}

func TestMockLogger(t *testing.T) {
	logger := &MockLogger{}
	logger.Debug("d %d", 1)
	logger.Info("i")
	logger.Warn("w %s", "x")
	logger.Error("e")

	if len(logger.DebugCalls) != 1 || len(logger.InfoCalls) != 1 || len(logger.ErrorCalls) != 1 {
		t.Errorf("unexpected call counts: %+v", logger)
	}
	if warnings := logger.Warnings(); len(warnings) != 1 || warnings[0] != "w x" {
		t.Errorf("unexpected warnings %v", warnings)
	}
	if logger.LastMessage != "e" {
		t.Errorf("LastMessage = %q", logger.LastMessage)
	}
}
