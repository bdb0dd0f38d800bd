// Package testutil provides in-memory doubles of the work item and issue
// services plus shared fixtures for package tests.
package testutil

import (
	"fmt"
	"sync"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/common"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// ErrorConfig represents common error simulation configuration
type ErrorConfig struct {
	ShouldError  bool
	ErrorMessage string
}

// GetErrorOrDefault returns the configured error message or a default message
func (c *ErrorConfig) GetErrorOrDefault(defaultMsg string) error {
	if !c.ShouldError {
		return nil
	}
	msg := c.ErrorMessage
	if msg == "" {
		msg = defaultMsg
	}
	return fmt.Errorf("%s", msg)
}

// TestDataFactory provides common test data creation patterns
type TestDataFactory struct{}

// NewTestDataFactory creates a new TestDataFactory
func NewTestDataFactory() *TestDataFactory {
	return &TestDataFactory{}
}

// CreateWorkItem creates an active task under the given area path
func (f *TestDataFactory) CreateWorkItem(id int, title, areaPath string) *types.WorkItem {
	if title == "" {
		title = fmt.Sprintf("Work item %d", id)
	}
	return &types.WorkItem{
		ID:            id,
		URL:           RelationURL(id),
		Type:          "Task",
		Title:         title,
		Description:   fmt.Sprintf("Description of %s", title),
		State:         "Active",
		AreaPath:      areaPath,
		IterationPath: areaPath,
		CreatedDate:   "2023-01-02T03:04:05Z",
		CreatedBy:     "Ada Lovelace",
		ChangedDate:   "2023-01-03T03:04:05Z",
		ChangedBy:     "Alan Turing",
	}
}

// RelationURL returns the API URL a relation uses to point at a work item
func RelationURL(id int) string {
	return fmt.Sprintf("https://dev.azure.com/contoso/_apis/wit/workItems/%d", id)
}

// Link adds a relation of the given kind from item to target
func Link(item *types.WorkItem, kind string, target int) {
	item.Relations = append(item.Relations, types.Relation{
		Rel:        "System.LinkTypes." + kind,
		URL:        RelationURL(target),
		Attributes: map[string]interface{}{"name": kind, "isLocked": false},
	})
}

// MockLogger records every message by level. It is safe for concurrent use.
type MockLogger struct {
	mu          sync.Mutex
	LastMessage string
	DebugCalls  []string
	InfoCalls   []string
	WarnCalls   []string
	ErrorCalls  []string
}

func (m *MockLogger) record(calls *[]string, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastMessage = fmt.Sprintf(format, args...)
	*calls = append(*calls, m.LastMessage)
}

func (m *MockLogger) Debug(format string, args ...interface{}) {
	m.record(&m.DebugCalls, format, args...)
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.record(&m.InfoCalls, format, args...)
}

func (m *MockLogger) Warn(format string, args ...interface{}) {
	m.record(&m.WarnCalls, format, args...)
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.record(&m.ErrorCalls, format, args...)
}

// Warnings returns a copy of the recorded warnings
func (m *MockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.WarnCalls...)
}

// Verify MockLogger implements common.Logger interface
var _ common.Logger = (*MockLogger)(nil)
