package filter

import (
	"sort"
	"strings"

	"github.com/gyeh/atexplorer/internal/model"
)

// Field is a categorical column of MergedRecord that can be filtered on.
type Field string

const (
	FieldSource      Field = model.ColSourceSystem
	FieldState       Field = model.ColState
	FieldMMM         Field = model.ColMMMCode
	FieldAgeBand     Field = model.ColAgeBand
	FieldPlanMode    Field = model.ColPlanMode
	FieldSupportItem Field = model.ColSupportItem
)

// AllFields lists the filterable fields in sidebar order.
var AllFields = []Field{
	FieldSource,
	FieldState,
	FieldMMM,
	FieldAgeBand,
	FieldPlanMode,
	FieldSupportItem,
}

var aliases = map[string]Field{
	"source":       FieldSource,
	"state":        FieldState,
	"mmm":          FieldMMM,
	"age":          FieldAgeBand,
	"mode":         FieldPlanMode,
	"plan_mode":    FieldPlanMode,
	"item":         FieldSupportItem,
	"support_item": FieldSupportItem,
}

// ParseField resolves a canonical column name (any case) or a short alias.
func ParseField(name string) (Field, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range AllFields {
		if strings.ToLower(string(f)) == n {
			return f, true
		}
	}
	f, ok := aliases[n]
	return f, ok
}

// Value returns the field of r, nil when null.
func (f Field) Value(r *model.MergedRecord) *string {
	switch f {
	case FieldSource:
		return r.SourceSystem
	case FieldState:
		return r.State
	case FieldMMM:
		return r.MMMCode
	case FieldAgeBand:
		return r.AgeBand
	case FieldPlanMode:
		return r.ManagementMode
	case FieldSupportItem:
		return r.SupportItem
	}
	return nil
}

// Selection is the user's filter state. A field absent from Fields, or
// mapped to an empty list, is unconstrained.
type Selection struct {
	Fields           map[Field][]string `json:"fields,omitempty"`
	DegenerativeOnly bool               `json:"degenerative_only"`
	BreachesOnly     bool               `json:"breaches_only"`
}

// Constrained reports whether field f narrows the result.
func (s Selection) Constrained(f Field) bool {
	return len(s.Fields[f]) > 0
}

// IsEmpty returns true if the selection keeps every record.
func (s Selection) IsEmpty() bool {
	if s.DegenerativeOnly || s.BreachesOnly {
		return false
	}
	for f := range s.Fields {
		if s.Constrained(f) {
			return false
		}
	}
	return true
}

// Apply returns the records satisfying every criterion: AND across fields,
// OR within a field. Unconstrained fields keep nulls; constrained fields
// never match a null. The input slice is not modified.
func Apply(records []model.MergedRecord, sel Selection) []model.MergedRecord {
	if sel.IsEmpty() {
		return records
	}

	// Pre-build lookup sets for each constrained field
	sets := make(map[Field]map[string]bool)
	for f, allowed := range sel.Fields {
		if !sel.Constrained(f) {
			continue
		}
		set := make(map[string]bool, len(allowed))
		for _, v := range allowed {
			set[v] = true
		}
		sets[f] = set
	}

	out := make([]model.MergedRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		if sel.DegenerativeOnly && !r.IsDegenerative() {
			continue
		}
		if sel.BreachesOnly && !r.IsBreach() {
			continue
		}
		if matches(r, sets) {
			out = append(out, *r)
		}
	}
	return out
}

func matches(r *model.MergedRecord, sets map[Field]map[string]bool) bool {
	for f, set := range sets {
		v := f.Value(r)
		if v == nil || !set[*v] {
			return false
		}
	}
	return true
}

// Options returns the sorted distinct non-null values of every field, the
// default selection for each multi-select.
func Options(records []model.MergedRecord) map[Field][]string {
	seen := make(map[Field]map[string]bool, len(AllFields))
	for _, f := range AllFields {
		seen[f] = make(map[string]bool)
	}
	for i := range records {
		for _, f := range AllFields {
			if v := f.Value(&records[i]); v != nil {
				seen[f][*v] = true
			}
		}
	}

	out := make(map[Field][]string, len(AllFields))
	for f, set := range seen {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		out[f] = vals
	}
	return out
}
