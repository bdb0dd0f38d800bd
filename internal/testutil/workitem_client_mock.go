package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/azuredevops"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// FieldPatch records one UpdateField call
type FieldPatch struct {
	ID    int
	Op    string
	Path  string
	Value interface{}
}

// WorkItemClientMock is an in-memory work item store. Queries apply the
// filter in memory and tag patches are written back, so a second run sees the
// effect of the first.
type WorkItemClientMock struct {
	mu sync.Mutex

	Items    map[int]*types.WorkItem
	Comments map[int]*types.CommentList

	AddedComments  map[int][]string
	Patches        []FieldPatch
	Fetched        []int
	CommentFetches []int

	FailQuery    ErrorConfig
	FailGet      map[int]error
	FailComments ErrorConfig
	FailPatch    ErrorConfig
}

// NewWorkItemClientMock creates a store holding the given work items
func NewWorkItemClientMock(items ...*types.WorkItem) *WorkItemClientMock {
	m := &WorkItemClientMock{
		Items:         make(map[int]*types.WorkItem),
		Comments:      make(map[int]*types.CommentList),
		AddedComments: make(map[int][]string),
		FailGet:       make(map[int]error),
	}
	for _, item := range items {
		m.Items[item.ID] = item
	}
	return m
}

// SetComments stores comments for a work item and updates its comment count
func (m *WorkItemClientMock) SetComments(id int, comments ...types.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Comments[id] = &types.CommentList{Comments: comments, TotalCount: len(comments)}
	if item, ok := m.Items[id]; ok {
		item.CommentCount = len(comments)
	}
}

func (m *WorkItemClientMock) QueryWorkItems(ctx context.Context, filter types.QueryFilter) ([]types.WorkItemRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailQuery.GetErrorOrDefault("simulated query failure"); err != nil {
		return nil, err
	}

	var refs []types.WorkItemRef
	for id, item := range m.Items {
		if filter.Matches(item) {
			refs = append(refs, types.WorkItemRef{ID: id, URL: item.URL})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (m *WorkItemClientMock) GetWorkItem(ctx context.Context, id int) (*types.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetched = append(m.Fetched, id)
	if err := m.FailGet[id]; err != nil {
		return nil, err
	}
	item, ok := m.Items[id]
	if !ok {
		return nil, fmt.Errorf("work item %d does not exist", id)
	}

	copied := *item
	copied.Tags = append([]string(nil), item.Tags...)
	copied.Relations = append([]types.Relation(nil), item.Relations...)
	if len(copied.Raw) == 0 {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		copied.Raw = raw
	}
	return &copied, nil
}

func (m *WorkItemClientMock) GetComments(ctx context.Context, id int) (*types.CommentList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommentFetches = append(m.CommentFetches, id)
	if err := m.FailComments.GetErrorOrDefault("simulated comment fetch failure"); err != nil {
		return nil, err
	}
	if list, ok := m.Comments[id]; ok {
		return list, nil
	}
	return &types.CommentList{}, nil
}

func (m *WorkItemClientMock) AddComment(ctx context.Context, id int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddedComments[id] = append(m.AddedComments[id], text)
	return nil
}

func (m *WorkItemClientMock) UpdateField(ctx context.Context, id int, op, path string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailPatch.GetErrorOrDefault("simulated patch failure"); err != nil {
		return err
	}
	m.Patches = append(m.Patches, FieldPatch{ID: id, Op: op, Path: path, Value: value})

	item, ok := m.Items[id]
	if !ok {
		return fmt.Errorf("work item %d does not exist", id)
	}
	if path == azuredevops.TagsFieldPath {
		tags, _ := value.(string)
		item.Tags = types.ParseTags(tags)
	}
	return nil
}

// Verify WorkItemClientMock implements the work item client interface
var _ azuredevops.WorkItemClient = (*WorkItemClientMock)(nil)
