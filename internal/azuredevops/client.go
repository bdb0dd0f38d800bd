// Package azuredevops adapts the Azure DevOps work item tracking API to the
// typed model used by the migration.
package azuredevops

import (
	"context"
	"fmt"
	"strconv"

	ado "github.com/microsoft/azure-devops-go-api/azuredevops/v7"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/common"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// BaseURL is the Azure DevOps Services host.
const BaseURL = "https://dev.azure.com"

// witAPI is the subset of the work item tracking client used here.
type witAPI interface {
	QueryByWiql(context.Context, workitemtracking.QueryByWiqlArgs) (*workitemtracking.WorkItemQueryResult, error)
	GetWorkItem(context.Context, workitemtracking.GetWorkItemArgs) (*workitemtracking.WorkItem, error)
	GetComments(context.Context, workitemtracking.GetCommentsArgs) (*workitemtracking.CommentList, error)
	AddComment(context.Context, workitemtracking.AddCommentArgs) (*workitemtracking.Comment, error)
	UpdateWorkItem(context.Context, workitemtracking.UpdateWorkItemArgs) (*workitemtracking.WorkItem, error)
}

// Client is the main client for Azure DevOps work item operations
type Client struct {
	Organization string
	Project      string
	wit          witAPI
	logger       common.Logger
}

// NewClient creates a client authenticated with a personal access token
func NewClient(ctx context.Context, organization, project, token string) (*Client, error) {
	if organization == "" || project == "" {
		return nil, errors.ConfigError("create_client", "organization and project are required", nil)
	}
	if token == "" {
		return nil, errors.ConfigError("create_client", "personal access token is required", nil)
	}

	connection := ado.NewPatConnection(fmt.Sprintf("%s/%s", BaseURL, organization), token)
	wit, err := workitemtracking.NewClient(ctx, connection)
	if err != nil {
		return nil, errors.SourceError("create_client", "failed to create work item tracking client", err)
	}
	return newClientWithAPI(organization, project, wit), nil
}

func newClientWithAPI(organization, project string, wit witAPI) *Client {
	return &Client{
		Organization: organization,
		Project:      project,
		wit:          wit,
	}
}

// SetLogger sets the logger for debug output
func (c *Client) SetLogger(logger common.Logger) {
	c.logger = logger
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(format, args...)
	}
}

// QueryWorkItems returns references to the work items matching filter, in ascending id order
func (c *Client) QueryWorkItems(ctx context.Context, filter types.QueryFilter) ([]types.WorkItemRef, error) {
	query := BuildQuery(filter)
	c.debugLog("Querying work items in %s/%s: %s", c.Organization, c.Project, query)

	result, err := c.wit.QueryByWiql(ctx, workitemtracking.QueryByWiqlArgs{
		Wiql:    &workitemtracking.Wiql{Query: &query},
		Project: &c.Project,
	})
	if err != nil {
		return nil, sourceError("query_work_items", "failed to query work items", err)
	}
	if result == nil || result.WorkItems == nil {
		return nil, nil
	}

	refs := make([]types.WorkItemRef, 0, len(*result.WorkItems))
	for _, ref := range *result.WorkItems {
		if ref.Id == nil {
			return nil, errors.IntegrityError("query_work_items", "query returned a work item reference without id", nil)
		}
		refs = append(refs, types.WorkItemRef{ID: *ref.Id, URL: stringValue(ref.Url)})
	}
	c.debugLog("Query returned %d work items", len(refs))
	return refs, nil
}

// GetWorkItem fetches one work item with its relations expanded
func (c *Client) GetWorkItem(ctx context.Context, id int) (*types.WorkItem, error) {
	c.debugLog("Fetching work item %d", id)

	wi, err := c.wit.GetWorkItem(ctx, workitemtracking.GetWorkItemArgs{
		Id:      &id,
		Project: &c.Project,
		Expand:  &workitemtracking.WorkItemExpandValues.Relations,
	})
	if err != nil {
		return nil, withID(sourceError("get_work_item", "failed to fetch work item", err), id)
	}
	return toWorkItem(wi)
}

// GetComments fetches the comments of a work item in a single call
func (c *Client) GetComments(ctx context.Context, id int) (*types.CommentList, error) {
	c.debugLog("Fetching comments of work item %d", id)

	list, err := c.wit.GetComments(ctx, workitemtracking.GetCommentsArgs{
		Project:    &c.Project,
		WorkItemId: &id,
	})
	if err != nil {
		return nil, withID(sourceError("get_comments", "failed to fetch comments", err), id)
	}
	return toCommentList(list), nil
}

// AddComment posts a comment on a work item
func (c *Client) AddComment(ctx context.Context, id int, text string) error {
	c.debugLog("Adding comment to work item %d", id)

	_, err := c.wit.AddComment(ctx, workitemtracking.AddCommentArgs{
		Request:    &workitemtracking.CommentCreate{Text: &text},
		Project:    &c.Project,
		WorkItemId: &id,
	})
	if err != nil {
		return withID(sourceError("add_comment", "failed to add comment", err), id)
	}
	return nil
}

// UpdateField applies a single JSON patch operation to a work item field
func (c *Client) UpdateField(ctx context.Context, id int, op, path string, value interface{}) error {
	c.debugLog("Patching work item %d: %s %s", id, op, path)

	operation := webapi.Operation(op)
	document := []webapi.JsonPatchOperation{{
		Op:    &operation,
		Path:  &path,
		Value: value,
	}}
	_, err := c.wit.UpdateWorkItem(ctx, workitemtracking.UpdateWorkItemArgs{
		Document: &document,
		Id:       &id,
		Project:  &c.Project,
	})
	if err != nil {
		return withID(sourceError("update_work_item", "failed to update work item", err), id)
	}
	return nil
}

// TagsWith returns the tags field value with tag appended, keeping existing tags.
func TagsWith(item *types.WorkItem, tag string) string {
	if item.HasTag(tag) {
		return types.JoinTags(item.Tags)
	}
	tags := make([]string, 0, len(item.Tags)+1)
	tags = append(tags, item.Tags...)
	tags = append(tags, tag)
	return types.JoinTags(tags)
}

// sourceError wraps an SDK error, surfacing the HTTP status when the service returned one.
func sourceError(operation, message string, err error) error {
	if errors.IsContextError(err) {
		return errors.ContextError(operation, err)
	}
	layered := errors.NewLayeredError(errors.LayerSource, operation, message, err)
	if wrapped, ok := err.(ado.WrappedError); ok && wrapped.StatusCode != nil {
		layered.WithContext("status", strconv.Itoa(*wrapped.StatusCode))
	}
	if wrapped, ok := err.(*ado.WrappedError); ok && wrapped.StatusCode != nil {
		layered.WithContext("status", strconv.Itoa(*wrapped.StatusCode))
	}
	return layered
}

func withID(err error, id int) error {
	return errors.WithContextSafe(err, "work_item_id", strconv.Itoa(id))
}
