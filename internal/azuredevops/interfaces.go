package azuredevops

import (
	"context"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// OpAdd is the JSON patch operation used for field updates.
const OpAdd = "add"

// TagsFieldPath is the JSON patch path of the work item tags field.
const TagsFieldPath = "/fields/System.Tags"

// WorkItemClient defines the work item tracking operations used by the migration
type WorkItemClient interface {
	QueryWorkItems(ctx context.Context, filter types.QueryFilter) ([]types.WorkItemRef, error)
	GetWorkItem(ctx context.Context, id int) (*types.WorkItem, error)
	GetComments(ctx context.Context, id int) (*types.CommentList, error)
	AddComment(ctx context.Context, id int, text string) error
	UpdateField(ctx context.Context, id int, op, path string, value interface{}) error
}
