package githubapi

import (
	"context"
	"io"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// IssueClient defines the interface for working with GitHub issues
type IssueClient interface {
	CreateIssue(ctx context.Context, input *types.IssueInput) (*types.Issue, error)
	UpdateIssueBody(ctx context.Context, number int, body string) error
	CreateComment(ctx context.Context, number int, body string) error
	CloseIssue(ctx context.Context, number int) error
}

// IssueCleaner defines the operations used to remove issues from a repository
type IssueCleaner interface {
	ListIssues(ctx context.Context) ([]types.Issue, error)
	DeleteIssue(ctx context.Context, nodeID string) error
}

// GitHubClient combines all GitHub API client interfaces
type GitHubClient interface {
	IssueClient
	IssueCleaner
}

// RESTDoer is the subset of the go-gh REST client used by GHClient
type RESTDoer interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error
}

// GraphQLDoer is the subset of the go-gh GraphQL client used by GHClient
type GraphQLDoer interface {
	QueryWithContext(ctx context.Context, name string, query interface{}, variables map[string]interface{}) error
	MutateWithContext(ctx context.Context, name string, mutation interface{}, variables map[string]interface{}) error
}
