package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/githubapi"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// IssueClientMock is an in-memory issue repository that records every call.
// It is safe for concurrent use.
type IssueClientMock struct {
	mu sync.Mutex

	Owner string
	Repo  string

	Issues      map[int]*types.Issue
	Created     []types.IssueInput
	Comments    map[int][]string
	BodyUpdates map[int][]string
	Closed      []int
	Deleted     []string

	FailCreate ErrorConfig
	FailUpdate map[int]error
	FailClose  ErrorConfig
	FailList   ErrorConfig
	FailDelete map[string]error

	nextNumber int
}

// NewIssueClientMock creates an empty repository
func NewIssueClientMock() *IssueClientMock {
	return &IssueClientMock{
		Owner:       "octo",
		Repo:        "migrated",
		Issues:      make(map[int]*types.Issue),
		Comments:    make(map[int][]string),
		BodyUpdates: make(map[int][]string),
		FailUpdate:  make(map[int]error),
		FailDelete:  make(map[string]error),
		nextNumber:  1,
	}
}

// IssueURL returns the URL the mock assigns to an issue number
func (m *IssueClientMock) IssueURL(number int) string {
	return fmt.Sprintf("https://github.com/%s/%s/issues/%d", m.Owner, m.Repo, number)
}

// AddExisting stores an issue as if it had been created earlier
func (m *IssueClientMock) AddExisting(title string, labels ...string) *types.Issue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store(title, "", labels)
}

func (m *IssueClientMock) store(title, body string, labels []string) *types.Issue {
	number := m.nextNumber
	m.nextNumber++
	issue := &types.Issue{
		NodeID: fmt.Sprintf("I_%d", number),
		Number: number,
		URL:    m.IssueURL(number),
		Title:  title,
		Body:   body,
		State:  "open",
		Labels: append([]string(nil), labels...),
	}
	m.Issues[number] = issue
	return issue
}

func (m *IssueClientMock) CreateIssue(ctx context.Context, input *types.IssueInput) (*types.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailCreate.GetErrorOrDefault("simulated issue creation failure"); err != nil {
		return nil, err
	}
	m.Created = append(m.Created, *input)
	issue := *m.store(input.Title, input.Body, input.Labels)
	return &issue, nil
}

func (m *IssueClientMock) UpdateIssueBody(ctx context.Context, number int, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailUpdate[number]; err != nil {
		return err
	}
	issue, ok := m.Issues[number]
	if !ok {
		return fmt.Errorf("issue #%d does not exist", number)
	}
	issue.Body = body
	m.BodyUpdates[number] = append(m.BodyUpdates[number], body)
	return nil
}

func (m *IssueClientMock) CreateComment(ctx context.Context, number int, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Issues[number]; !ok {
		return fmt.Errorf("issue #%d does not exist", number)
	}
	m.Comments[number] = append(m.Comments[number], body)
	return nil
}

func (m *IssueClientMock) CloseIssue(ctx context.Context, number int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailClose.GetErrorOrDefault("simulated close failure"); err != nil {
		return err
	}
	issue, ok := m.Issues[number]
	if !ok {
		return fmt.Errorf("issue #%d does not exist", number)
	}
	issue.State = "closed"
	m.Closed = append(m.Closed, number)
	return nil
}

func (m *IssueClientMock) ListIssues(ctx context.Context) ([]types.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailList.GetErrorOrDefault("simulated list failure"); err != nil {
		return nil, err
	}
	issues := make([]types.Issue, 0, len(m.Issues))
	for _, issue := range m.Issues {
		issues = append(issues, *issue)
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Number < issues[j].Number })
	return issues, nil
}

func (m *IssueClientMock) DeleteIssue(ctx context.Context, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailDelete[nodeID]; err != nil {
		return err
	}
	for number, issue := range m.Issues {
		if issue.NodeID == nodeID {
			delete(m.Issues, number)
			m.Deleted = append(m.Deleted, nodeID)
			return nil
		}
	}
	return fmt.Errorf("issue %s does not exist", nodeID)
}

// Verify IssueClientMock implements the GitHub client interface
var _ githubapi.GitHubClient = (*IssueClientMock)(nil)
