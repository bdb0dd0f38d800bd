package azuredevops

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/webapi"
	"github.com/microsoft/azure-devops-go-api/azuredevops/v7/workitemtracking"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// Field reference names read from a work item.
const (
	FieldWorkItemType       = "System.WorkItemType"
	FieldTitle              = "System.Title"
	FieldDescription        = "System.Description"
	FieldState              = "System.State"
	FieldAreaPath           = "System.AreaPath"
	FieldIterationPath      = "System.IterationPath"
	FieldCreatedDate        = "System.CreatedDate"
	FieldCreatedBy          = "System.CreatedBy"
	FieldChangedDate        = "System.ChangedDate"
	FieldChangedBy          = "System.ChangedBy"
	FieldAssignedTo         = "System.AssignedTo"
	FieldCommentCount       = "System.CommentCount"
	FieldTags               = "System.Tags"
	FieldAcceptanceCriteria = "Microsoft.VSTS.Common.AcceptanceCriteria"
	FieldReproSteps         = "Microsoft.VSTS.TCM.ReproSteps"
	FieldSystemInfo         = "Microsoft.VSTS.TCM.SystemInfo"
)

// fieldReader reads typed values out of the untyped field map and remembers the
// first required field that was missing or had the wrong type.
type fieldReader struct {
	fields map[string]interface{}
	err    error
}

func (r *fieldReader) fail(field, problem string) {
	if r.err == nil {
		err := errors.IntegrityError("map_work_item", fmt.Sprintf("field %s %s", field, problem), nil)
		r.err = errors.WithContextSafe(err, "field", field)
	}
}

func (r *fieldReader) required(field string) interface{} {
	v, ok := r.fields[field]
	if !ok || v == nil {
		r.fail(field, "is missing")
		return nil
	}
	return v
}

func (r *fieldReader) requiredString(field string) string {
	v := r.required(field)
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, "is not a string")
	}
	return s
}

func (r *fieldReader) optionalString(field string) string {
	s, _ := r.fields[field].(string)
	return s
}

func (r *fieldReader) requiredIdentity(field string) string {
	v := r.required(field)
	if v == nil {
		return ""
	}
	name, ok := identityName(v)
	if !ok {
		r.fail(field, "is not an identity")
	}
	return name
}

func (r *fieldReader) optionalIdentity(field string) string {
	v, ok := r.fields[field]
	if !ok || v == nil {
		return ""
	}
	name, _ := identityName(v)
	return name
}

func (r *fieldReader) requiredInt(field string) int {
	switch v := r.required(field).(type) {
	case nil:
		return 0
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			r.fail(field, "is not an integer")
		}
		return n
	default:
		r.fail(field, "is not a number")
		return 0
	}
}

// identityName extracts the display name from an identity field, which arrives
// as a JSON object or, for older payloads, as "Name <domain\\user>".
func identityName(v interface{}) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, true
	case map[string]interface{}:
		name, ok := id["displayName"].(string)
		return name, ok
	default:
		return "", false
	}
}

// toWorkItem maps the SDK payload into a typed work item. Missing required
// fields are integrity errors naming the field.
func toWorkItem(wi *workitemtracking.WorkItem) (*types.WorkItem, error) {
	if wi == nil || wi.Id == nil {
		return nil, errors.IntegrityError("map_work_item", "work item has no id", nil)
	}
	if wi.Fields == nil {
		err := errors.IntegrityError("map_work_item", "work item has no fields", nil)
		return nil, errors.WithContextSafe(err, "work_item_id", strconv.Itoa(*wi.Id))
	}

	r := &fieldReader{fields: *wi.Fields}
	item := &types.WorkItem{
		ID:                 *wi.Id,
		URL:                stringValue(wi.Url),
		Type:               r.requiredString(FieldWorkItemType),
		Title:              r.requiredString(FieldTitle),
		State:              r.requiredString(FieldState),
		AreaPath:           r.requiredString(FieldAreaPath),
		IterationPath:      r.requiredString(FieldIterationPath),
		CreatedDate:        r.requiredString(FieldCreatedDate),
		CreatedBy:          r.requiredIdentity(FieldCreatedBy),
		ChangedDate:        r.requiredString(FieldChangedDate),
		ChangedBy:          r.requiredIdentity(FieldChangedBy),
		CommentCount:       r.requiredInt(FieldCommentCount),
		Description:        r.optionalString(FieldDescription),
		AssignedTo:         r.optionalIdentity(FieldAssignedTo),
		AcceptanceCriteria: r.optionalString(FieldAcceptanceCriteria),
		ReproSteps:         r.optionalString(FieldReproSteps),
		SystemInfo:         r.optionalString(FieldSystemInfo),
		Tags:               types.ParseTags(r.optionalString(FieldTags)),
	}
	if r.err != nil {
		return nil, errors.WithContextSafe(r.err, "work_item_id", strconv.Itoa(item.ID))
	}

	if wi.Relations != nil {
		for _, rel := range *wi.Relations {
			relation := types.Relation{
				Rel: stringValue(rel.Rel),
				URL: stringValue(rel.Url),
			}
			if rel.Attributes != nil {
				relation.Attributes = *rel.Attributes
			}
			item.Relations = append(item.Relations, relation)
		}
	}

	raw, err := json.Marshal(wi)
	if err != nil {
		return nil, errors.IntegrityError("map_work_item", "failed to serialize work item payload", err)
	}
	item.Raw = raw
	return item, nil
}

// toCommentList maps the SDK comment page. TotalCount falls back to the page
// count when the service omits it.
func toCommentList(list *workitemtracking.CommentList) *types.CommentList {
	result := &types.CommentList{}
	if list == nil {
		return result
	}
	if list.Comments != nil {
		for _, c := range *list.Comments {
			comment := types.Comment{
				CreatedBy: identityRefName(c.CreatedBy),
				URL:       stringValue(c.Url),
				Text:      stringValue(c.Text),
			}
			if c.CreatedDate != nil {
				comment.CreatedDate = c.CreatedDate.Time
			}
			result.Comments = append(result.Comments, comment)
		}
	}
	switch {
	case list.TotalCount != nil:
		result.TotalCount = *list.TotalCount
	case list.Count != nil:
		result.TotalCount = *list.Count
	default:
		result.TotalCount = len(result.Comments)
	}
	return result
}

func identityRefName(ref *webapi.IdentityRef) string {
	if ref == nil {
		return ""
	}
	return stringValue(ref.DisplayName)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
