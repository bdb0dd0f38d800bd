// Package render turns a work item and its comments into the markdown fragments
// used for the GitHub issue body and its metadata comment. All functions are
// pure; the output layout is relied upon by readers of migrated issues.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

const (
	detailsStart  = "\n<details><summary>%s</summary><p>\n\n"
	detailsEnd    = "\n</p></details>"
	jsonBlockEnd  = "\n\n</p></details>"
	sourceURLLink = "[Azure DevOps Work Item URL](%s)"
	workItemURL   = "https://dev.azure.com/%s/%s/_workitems/edit/%d"

	detailsHeader = "| Created date | Created by | Changed date | Changed By | Assigned To | State | Type | Area Path | Iteration Path|\n" +
		"|---|---|---|---|---|---|---|---|---|\n"
	commentsHeader = "| Created date | Created by | JSON URL |\n" +
		"|---|---|---|\n"
)

// Title returns the issue title for a work item.
func Title(item *types.WorkItem) string {
	return item.Title
}

// Label returns the label applied to the issue, which is the work item type.
func Label(item *types.WorkItem) string {
	return item.Type
}

// Description renders the issue body. Bugs get their repro steps and system
// info sections; every other type gets the description followed by the
// acceptance criteria when present.
func Description(item *types.WorkItem) string {
	var b strings.Builder
	if item.Type == types.WorkItemTypeBug {
		writeSection(&b, "Repro Steps", item.ReproSteps)
		writeSection(&b, "System Info", item.SystemInfo)
		return b.String()
	}
	b.WriteString(item.Description)
	writeSection(&b, "Acceptance Criteria", item.AcceptanceCriteria)
	return b.String()
}

func writeSection(b *strings.Builder, heading, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", heading, text)
}

// WorkItemURL returns the web address of a work item.
func WorkItemURL(organization, project string, id int) string {
	return fmt.Sprintf(workItemURL, organization, project, id)
}

// SourceURL renders the markdown link back to the work item.
func SourceURL(organization, project string, id int) string {
	return fmt.Sprintf(sourceURLLink, WorkItemURL(organization, project, id))
}

// DetailsTable renders the fixed nine column metadata table in a collapsible block.
func DetailsTable(item *types.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, detailsStart, "Work Item Details")
	b.WriteString(detailsHeader)
	fmt.Fprintf(&b, "| %s | %s | %s | %s| %s | %s | %s | %s | %s |",
		item.CreatedDate,
		item.CreatedBy,
		item.ChangedDate,
		item.ChangedBy,
		item.AssignedTo,
		item.State,
		item.Type,
		item.AreaPath,
		item.IterationPath,
	)
	b.WriteString(detailsEnd)
	return b.String()
}

// CommentsBlock renders the comment table. It is empty when the work item has
// no comments. The number of rendered rows must equal the total reported by
// the service; comments are fetched in one call and a mismatch means some were
// not returned.
func CommentsBlock(item *types.WorkItem, comments *types.CommentList) (string, error) {
	if item.CommentCount <= 0 {
		return "", nil
	}
	if comments == nil {
		err := errors.IntegrityError("render_comments", "work item reports comments but none were fetched", nil)
		return "", errors.WithContextSafe(err, "work_item_id", fmt.Sprint(item.ID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, detailsStart, "Work Item Comments")
	b.WriteString(commentsHeader)
	rows := 0
	for _, c := range comments.Comments {
		fmt.Fprintf(&b, "| %s | %s | [URL](%s) |\n", formatDate(c.CreatedDate), c.CreatedBy, c.URL)
		rows++
	}
	b.WriteString(detailsEnd)

	if rows != comments.TotalCount {
		err := errors.IntegrityError("render_comments",
			fmt.Sprintf("rendered %d comments but the service reported %d", rows, comments.TotalCount), nil)
		return "", errors.WithContextSafe(err, "work_item_id", fmt.Sprint(item.ID))
	}
	return b.String(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// JSONBlock renders the full source payload as an indented JSON code block.
func JSONBlock(item *types.WorkItem) (string, error) {
	var payload bytes.Buffer
	if len(item.Raw) > 0 {
		if err := json.Indent(&payload, item.Raw, "", "  "); err != nil {
			return "", errors.IntegrityError("render_json", "work item payload is not valid JSON", err)
		}
	} else {
		data, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			return "", errors.IntegrityError("render_json", "failed to serialize work item", err)
		}
		payload.Write(data)
	}

	var b strings.Builder
	fmt.Fprintf(&b, detailsStart, "Work Item JSON")
	b.WriteString("```json\n")
	b.Write(payload.Bytes())
	b.WriteString("\n```")
	b.WriteString(jsonBlockEnd)
	return b.String(), nil
}

// IssueComment composes the metadata comment posted on the new issue:
// source link, comments block, details table, JSON block, in that order.
func IssueComment(sourceURL string, item *types.WorkItem, comments *types.CommentList) (string, error) {
	commentsBlock, err := CommentsBlock(item, comments)
	if err != nil {
		return "", err
	}
	jsonBlock, err := JSONBlock(item)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(sourceURL)
	b.WriteString(commentsBlock)
	b.WriteString("\n")
	b.WriteString(DetailsTable(item))
	b.WriteString(jsonBlock)
	return b.String(), nil
}

// MigratedBackLink is the comment added to the work item after migration.
func MigratedBackLink(issueURL string) string {
	return fmt.Sprintf(`Work item was migrated to GitHub: <a href="%s">%s</a>`, issueURL, issueURL)
}
