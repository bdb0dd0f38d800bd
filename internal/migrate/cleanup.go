package migrate

import (
	"context"
	"strconv"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/common"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/config"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/githubapi"
)

// CleanupOptions defines the options for the delete-issues operation
type CleanupOptions struct {
	DryRun         bool
	PreserveConfig *config.PreserveConfig
}

// CleanupSummary holds statistics for a delete-issues run
type CleanupSummary struct {
	Listed    int
	Deleted   int
	Preserved int
	Errors    []string
}

// DeleteAllIssues removes every issue from the destination repository except
// the preserved ones. Individual delete failures are collected and returned
// as a PartialFailureError once all issues have been attempted.
func DeleteAllIssues(ctx context.Context, client githubapi.IssueCleaner, options CleanupOptions, logger common.Logger) (*CleanupSummary, error) {
	summary := &CleanupSummary{Errors: make([]string, 0)}
	logger.Info("Starting issue cleanup (dry-run: %v)", options.DryRun)

	issues, err := client.ListIssues(ctx)
	if err != nil {
		return summary, wrapFailure(err, errors.LayerDestination, "list_issues", "failed to list issues")
	}
	summary.Listed = len(issues)
	logger.Debug("Found %d issues to evaluate for cleanup", len(issues))

	collector := errors.NewErrorCollector("delete_issues")
	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return summary, errors.ContextError("delete_issues", err)
		}

		if ShouldPreserveIssue(options.PreserveConfig, issue) {
			summary.Preserved++
			logger.Debug("Preserving issue #%d: %s", issue.Number, issue.Title)
			continue
		}

		if options.DryRun {
			logger.Info("Would delete issue #%d: %s", issue.Number, issue.Title)
		} else {
			logger.Debug("Deleting issue #%d: %s", issue.Number, issue.Title)
			if err := client.DeleteIssue(ctx, issue.NodeID); err != nil {
				wrapped := wrapFailure(err, errors.LayerDestination, "delete_issue", "failed to delete issue")
				wrapped = errors.WithContextSafe(wrapped, "issue_number", strconv.Itoa(issue.Number))
				wrapped = errors.WithContextSafe(wrapped, "node_id", issue.NodeID)
				collector.Add(wrapped)
				logger.Warn("Failed to delete issue #%d '%s': %v", issue.Number, issue.Title, err)
				continue
			}
		}
		summary.Deleted++
	}

	logger.Info("Cleanup summary: %d deleted, %d preserved of %d issues", summary.Deleted, summary.Preserved, summary.Listed)

	if result := collector.Result(); result != nil {
		if partial, ok := result.(*errors.PartialFailureError); ok {
			summary.Errors = partial.Errors
		} else {
			summary.Errors = []string{result.Error()}
		}
		logger.Info("Cleanup completed with %d errors", len(summary.Errors))
		return summary, errors.NewPartialFailureError(summary.Errors)
	}

	logger.Info("Cleanup completed successfully")
	return summary, nil
}
