// Package githubapi wraps the go-gh REST and GraphQL clients with the issue
// operations needed by the migration and the cleanup command.
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cli/go-gh/v2/pkg/api"
	graphql "github.com/cli/shurcooL-graphql"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/common"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// DefaultHost is the GitHub host used when none is configured.
const DefaultHost = "github.com"

// issuesPageSize is the number of issues fetched per GraphQL page.
const issuesPageSize = 100

// GHClient is the main client for all GitHub API operations
type GHClient struct {
	Owner  string
	Repo   string
	rest   RESTDoer
	gql    GraphQLDoer
	logger common.Logger
}

// DeleteIssueInput is the input object of the deleteIssue mutation
type DeleteIssueInput struct {
	IssueID graphql.ID `json:"issueId"`
}

// NewGHClient creates REST and GraphQL clients for the given host. An empty
// token lets go-gh resolve credentials from the environment or gh config.
func NewGHClient(owner, repo, host, token string) (*GHClient, error) {
	if owner == "" || repo == "" {
		return nil, errors.ConfigError("create_client", "owner and repository are required", nil)
	}
	if host == "" {
		host = DefaultHost
	}
	opts := api.ClientOptions{Host: host, AuthToken: token}

	restClient, err := api.NewRESTClient(opts)
	if err != nil {
		return nil, errors.DestinationError("create_client", "failed to create REST client", err)
	}
	gqlClient, err := api.NewGraphQLClient(opts)
	if err != nil {
		return nil, errors.DestinationError("create_client", "failed to create GraphQL client", err)
	}
	return NewGHClientWithClients(owner, repo, restClient, gqlClient), nil
}

// NewGHClientWithClients creates a GHClient around existing transport clients
func NewGHClientWithClients(owner, repo string, rest RESTDoer, gql GraphQLDoer) *GHClient {
	return &GHClient{
		Owner: owner,
		Repo:  repo,
		rest:  rest,
		gql:   gql,
	}
}

// SetLogger sets the logger for debug output
func (c *GHClient) SetLogger(logger common.Logger) {
	c.logger = logger
}

// debugLog logs a debug message if logger is available
func (c *GHClient) debugLog(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(format, args...)
	}
}

// issueResponse is the REST representation of an issue
type issueResponse struct {
	NodeID  string `json:"node_id"`
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
	Labels  []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

func (r *issueResponse) toIssue() *types.Issue {
	issue := &types.Issue{
		NodeID: r.NodeID,
		Number: r.Number,
		URL:    r.HTMLURL,
		Title:  r.Title,
		Body:   r.Body,
		State:  r.State,
	}
	for _, label := range r.Labels {
		issue.Labels = append(issue.Labels, label.Name)
	}
	return issue
}

// request performs a REST call with a JSON payload
func (c *GHClient) request(ctx context.Context, method, path string, payload interface{}, response interface{}) error {
	if c.rest == nil {
		return fmt.Errorf("REST client is not initialized")
	}
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return err
		}
	}
	return c.rest.DoWithContext(ctx, method, path, &body, response)
}

func (c *GHClient) issuesPath() string {
	return fmt.Sprintf("repos/%s/%s/issues", c.Owner, c.Repo)
}

// CreateIssue creates an issue and returns it with its number and URL
func (c *GHClient) CreateIssue(ctx context.Context, input *types.IssueInput) (*types.Issue, error) {
	c.debugLog("Creating issue '%s' in repository %s/%s", input.Title, c.Owner, c.Repo)

	payload := map[string]interface{}{
		"title": input.Title,
		"body":  input.Body,
	}
	if len(input.Labels) > 0 {
		payload["labels"] = input.Labels
	}

	var response issueResponse
	if err := c.request(ctx, http.MethodPost, c.issuesPath(), payload, &response); err != nil {
		c.debugLog("Failed to create issue '%s': %v", input.Title, err)
		return nil, destinationError("create_issue", fmt.Sprintf("failed to create issue '%s'", input.Title), err)
	}
	if response.Number == 0 || response.HTMLURL == "" {
		return nil, errors.IntegrityError("create_issue",
			fmt.Sprintf("created issue '%s' but the response carries no number or url", input.Title), nil)
	}

	c.debugLog("Successfully created issue #%d '%s'", response.Number, input.Title)
	return response.toIssue(), nil
}

// UpdateIssueBody replaces the body of an issue
func (c *GHClient) UpdateIssueBody(ctx context.Context, number int, body string) error {
	c.debugLog("Updating body of issue #%d", number)

	path := fmt.Sprintf("%s/%d", c.issuesPath(), number)
	if err := c.request(ctx, http.MethodPatch, path, map[string]interface{}{"body": body}, nil); err != nil {
		return withNumber(destinationError("update_issue", "failed to update issue body", err), number)
	}
	return nil
}

// CreateComment adds a comment to an issue
func (c *GHClient) CreateComment(ctx context.Context, number int, body string) error {
	c.debugLog("Adding comment to issue #%d", number)

	path := fmt.Sprintf("%s/%d/comments", c.issuesPath(), number)
	if err := c.request(ctx, http.MethodPost, path, map[string]interface{}{"body": body}, nil); err != nil {
		return withNumber(destinationError("create_comment", "failed to add issue comment", err), number)
	}
	return nil
}

// CloseIssue sets the state of an issue to closed
func (c *GHClient) CloseIssue(ctx context.Context, number int) error {
	c.debugLog("Closing issue #%d", number)

	path := fmt.Sprintf("%s/%d", c.issuesPath(), number)
	payload := map[string]interface{}{"state": "closed", "state_reason": "completed"}
	if err := c.request(ctx, http.MethodPatch, path, payload, nil); err != nil {
		return withNumber(destinationError("close_issue", "failed to close issue", err), number)
	}
	return nil
}

// ListIssues returns every issue in the repository, open and closed
func (c *GHClient) ListIssues(ctx context.Context) ([]types.Issue, error) {
	if c.gql == nil {
		return nil, fmt.Errorf("GraphQL client is not initialized")
	}
	c.debugLog("Fetching issues from repository %s/%s", c.Owner, c.Repo)

	variables := map[string]interface{}{
		"owner":  graphql.String(c.Owner),
		"name":   graphql.String(c.Repo),
		"first":  graphql.Int(issuesPageSize),
		"cursor": (*graphql.String)(nil),
	}

	var issues []types.Issue
	for {
		var query struct {
			Repository struct {
				Issues struct {
					Nodes []struct {
						ID     string
						Number int
						Title  string
						URL    string
						State  string
						Labels struct {
							Nodes []struct {
								Name string
							}
						} `graphql:"labels(first: 100)"`
					}
					PageInfo struct {
						HasNextPage bool
						EndCursor   string
					}
				} `graphql:"issues(first: $first, after: $cursor)"`
			} `graphql:"repository(owner: $owner, name: $name)"`
		}
		if err := c.gql.QueryWithContext(ctx, "RepositoryIssues", &query, variables); err != nil {
			c.debugLog("Failed to fetch issues: %v", err)
			return nil, destinationError("list_issues", "failed to fetch issues", err)
		}
		for _, node := range query.Repository.Issues.Nodes {
			issue := types.Issue{
				NodeID: node.ID,
				Number: node.Number,
				URL:    node.URL,
				Title:  node.Title,
				State:  node.State,
			}
			for _, label := range node.Labels.Nodes {
				issue.Labels = append(issue.Labels, label.Name)
			}
			issues = append(issues, issue)
		}
		if !query.Repository.Issues.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = graphql.String(query.Repository.Issues.PageInfo.EndCursor)
	}

	c.debugLog("Successfully fetched %d issues", len(issues))
	return issues, nil
}

// DeleteIssue permanently deletes an issue by its node ID
func (c *GHClient) DeleteIssue(ctx context.Context, nodeID string) error {
	if c.gql == nil {
		return fmt.Errorf("GraphQL client is not initialized")
	}
	c.debugLog("Deleting issue %s", nodeID)

	var mutation struct {
		DeleteIssue struct {
			ClientMutationID string
		} `graphql:"deleteIssue(input: $input)"`
	}
	variables := map[string]interface{}{
		"input": DeleteIssueInput{IssueID: graphql.ID(nodeID)},
	}

	if err := c.gql.MutateWithContext(ctx, "DeleteIssue", &mutation, variables); err != nil {
		return errors.WithContextSafe(destinationError("delete_issue", "failed to delete issue", err), "node_id", nodeID)
	}
	return nil
}

// destinationError wraps a transport error, adding the HTTP status when present.
func destinationError(operation, message string, err error) error {
	if errors.IsContextError(err) {
		return errors.ContextError(operation, err)
	}
	layered := errors.NewLayeredError(errors.LayerDestination, operation, message, err)
	var httpErr *api.HTTPError
	if stderrors.As(err, &httpErr) {
		layered.WithContext("status", strconv.Itoa(httpErr.StatusCode))
	}
	return layered
}

func withNumber(err error, number int) error {
	return errors.WithContextSafe(err, "issue_number", strconv.Itoa(number))
}
