// Package migrate drives the migration of work items into issues. Pass 1
// creates one issue per eligible work item; pass 2 links the created issues
// to each other once every work item has a destination.
package migrate

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/azuredevops"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/common"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/githubapi"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/relations"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/render"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// Options controls a migration run
type Options struct {
	Organization string // source organization, used for work item links
	Project      string // source project, used for work item links
	AreaPath     string
	MigratedTag  string

	MigrateClosed bool // also migrate work items in a closed state and close their issues
	TagMigrated   bool // tag migrated work items and comment the issue link on them
	Concurrency   int  // issues updated in parallel while linking
}

// Filter returns the eligibility filter for these options.
func (o Options) Filter() types.QueryFilter {
	return types.QueryFilter{
		AreaPath:      o.AreaPath,
		IncludeClosed: o.MigrateClosed,
		MigratedTag:   o.MigratedTag,
	}
}

// Result summarizes a migration run
type Result struct {
	Migrated *types.MigrationMap
	Entries  []ReportEntry

	Created int
	Skipped int
	Tagged  int
	Closed  int
	Linked  int
}

// Migrator moves work items from the source into issues in the destination
type Migrator struct {
	source azuredevops.WorkItemClient
	dest   githubapi.IssueClient
	opts   Options
	logger common.Logger
}

// New creates a Migrator
func New(source azuredevops.WorkItemClient, dest githubapi.IssueClient, opts Options, logger common.Logger) *Migrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Migrator{
		source: source,
		dest:   dest,
		opts:   opts,
		logger: logger,
	}
}

// Run executes both passes. The first error aborts the run; issues created
// before the failure are left in place and are reflected in the returned result.
func (m *Migrator) Run(ctx context.Context) (*Result, error) {
	result := &Result{Migrated: types.NewMigrationMap()}

	filter := m.opts.Filter()
	refs, err := m.source.QueryWorkItems(ctx, filter)
	if err != nil {
		return result, wrapFailure(err, errors.LayerSource, "query_work_items", "failed to query work items")
	}
	m.logger.Info("Found %d work items to migrate (area path: %s, closed: %v)", len(refs), filter.AreaPath, filter.IncludeClosed)

	items, err := m.createIssues(ctx, refs, filter, result)
	if err != nil {
		return result, err
	}
	m.logger.Info("Pass 1 complete: %d issues created, %d skipped", result.Created, result.Skipped)

	if err := m.linkIssues(ctx, items, result); err != nil {
		return result, err
	}
	m.logger.Info("Pass 2 complete: %d issues updated with links", result.Linked)

	m.logger.Info("Migration summary: created=%d closed=%d tagged=%d linked=%d skipped=%d",
		result.Created, result.Closed, result.Tagged, result.Linked, result.Skipped)
	return result, nil
}

// createIssues is pass 1. It runs sequentially and is the only writer of the
// migration map.
func (m *Migrator) createIssues(ctx context.Context, refs []types.WorkItemRef, filter types.QueryFilter, result *Result) ([]*types.WorkItem, error) {
	items := make([]*types.WorkItem, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, errors.ContextError("create_issues", err)
		}

		item, err := m.source.GetWorkItem(ctx, ref.ID)
		if err != nil {
			return nil, withWorkItem(wrapFailure(err, errors.LayerSource, "get_work_item", "failed to fetch work item"), ref.ID)
		}
		if !filter.Matches(item) {
			m.logger.Warn("Skipping work item %d: it no longer matches the migration filter", item.ID)
			result.Skipped++
			continue
		}

		issue, err := m.migrateItem(ctx, item, result)
		if err != nil {
			return nil, err
		}
		m.logger.Info("Migrated work item %d to issue #%d (%s)", item.ID, issue.Number, issue.URL)
		items = append(items, item)
	}
	return items, nil
}

// migrateItem renders one work item, creates its issue and applies the follow
// up actions on both sides.
func (m *Migrator) migrateItem(ctx context.Context, item *types.WorkItem, result *Result) (*types.Issue, error) {
	description := render.Description(item)
	if item.Type != types.WorkItemTypeBug && item.AcceptanceCriteria == "" {
		m.logger.Debug("Work item %d '%s' has no acceptance criteria", item.ID, item.Title)
	}

	var comments *types.CommentList
	if item.CommentCount > 0 {
		var err error
		comments, err = m.source.GetComments(ctx, item.ID)
		if err != nil {
			return nil, withWorkItem(wrapFailure(err, errors.LayerSource, "get_comments", "failed to fetch comments"), item.ID)
		}
	}
	metadata, err := render.IssueComment(render.SourceURL(m.opts.Organization, m.opts.Project, item.ID), item, comments)
	if err != nil {
		return nil, err
	}

	issue, err := m.dest.CreateIssue(ctx, &types.IssueInput{
		Title:  render.Title(item),
		Body:   description,
		Labels: []string{render.Label(item)},
	})
	if err != nil {
		return nil, withWorkItem(wrapFailure(err, errors.LayerDestination, "create_issue", "failed to create issue"), item.ID)
	}
	if issue.Body == "" {
		issue.Body = description
	}
	if !result.Migrated.Add(item.ID, issue) {
		err := errors.IntegrityError("create_issues", "work item was migrated twice in one run", nil)
		return nil, withWorkItem(err, item.ID)
	}
	result.Created++
	result.Entries = append(result.Entries, ReportEntry{
		WorkItemID:  item.ID,
		WorkItemURL: render.WorkItemURL(m.opts.Organization, m.opts.Project, item.ID),
		Title:       item.Title,
		IssueNumber: issue.Number,
		IssueURL:    issue.URL,
	})

	if err := m.dest.CreateComment(ctx, issue.Number, metadata); err != nil {
		return nil, withWorkItem(wrapFailure(err, errors.LayerDestination, "create_comment", "failed to add metadata comment"), item.ID)
	}

	if m.opts.TagMigrated {
		tags := azuredevops.TagsWith(item, m.opts.MigratedTag)
		if err := m.source.UpdateField(ctx, item.ID, azuredevops.OpAdd, azuredevops.TagsFieldPath, tags); err != nil {
			return nil, withWorkItem(wrapFailure(err, errors.LayerSource, "tag_work_item", "failed to tag work item"), item.ID)
		}
		if err := m.source.AddComment(ctx, item.ID, render.MigratedBackLink(issue.URL)); err != nil {
			return nil, withWorkItem(wrapFailure(err, errors.LayerSource, "add_comment", "failed to add migration comment"), item.ID)
		}
		result.Tagged++
	}

	if m.opts.MigrateClosed && item.IsClosed() {
		if err := m.dest.CloseIssue(ctx, issue.Number); err != nil {
			return nil, withWorkItem(wrapFailure(err, errors.LayerDestination, "close_issue", "failed to close issue"), item.ID)
		}
		m.logger.Debug("Closed issue #%d for work item %d in state %s", issue.Number, item.ID, item.State)
		result.Closed++
	}
	return issue, nil
}

// linkIssues is pass 2. The migration map is complete and read-only here, so
// issues are updated in parallel; the first failure cancels the rest.
func (m *Migrator) linkIssues(ctx context.Context, items []*types.WorkItem, result *Result) error {
	var linked atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)

	for _, item := range items {
		item := item
		g.Go(func() error {
			updated, err := m.linkItem(gctx, item, result.Migrated)
			if updated {
				linked.Add(1)
			}
			return err
		})
	}

	err := g.Wait()
	result.Linked = int(linked.Load())
	return err
}

// linkItem appends the tasklists of one work item to its issue body. It
// reports whether the issue was updated.
func (m *Migrator) linkItem(ctx context.Context, item *types.WorkItem, migrated *types.MigrationMap) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.ContextError("link_issues", err)
	}

	own, ok := migrated.Get(item.ID)
	if !ok {
		err := errors.IntegrityError("link_issues", "migrated work item has no issue", nil)
		return false, withWorkItem(err, item.ID)
	}

	rendered, err := relations.Render(item, migrated)
	if err != nil {
		return false, err
	}
	for _, target := range rendered.Missing {
		m.logger.Warn("Work item %d links to work item %d, which was not migrated in this run", item.ID, target)
	}
	if rendered.Tasklists == "" {
		m.logger.Debug("Work item %d has no relations to link", item.ID)
		return false, nil
	}

	if err := m.dest.UpdateIssueBody(ctx, own.Number, own.Body+rendered.Tasklists); err != nil {
		return false, withWorkItem(wrapFailure(err, errors.LayerDestination, "update_issue", "failed to update issue body"), item.ID)
	}
	m.logger.Debug("Linked issue #%d to %d related issues", own.Number, rendered.Links)
	return true, nil
}

// wrapFailure tags a collaborator error with its layer unless it already carries one.
func wrapFailure(err error, layer, operation, message string) error {
	if errors.AsLayeredError(err) != nil {
		return err
	}
	if errors.IsContextError(err) {
		return errors.ContextError(operation, err)
	}
	return errors.WrapWithOperation(err, layer, operation, message)
}

func withWorkItem(err error, id int) error {
	return errors.WithContextSafe(err, "work_item_id", strconv.Itoa(id))
}

// String renders a one line summary of the result.
func (r *Result) String() string {
	return fmt.Sprintf("created=%d closed=%d tagged=%d linked=%d skipped=%d",
		r.Created, r.Closed, r.Tagged, r.Linked, r.Skipped)
}
