package normalize

import (
	"fmt"
	"strings"

	"github.com/gyeh/atexplorer/internal/model"
)

// Mapping is the declarative rename policy for one table kind: lower-cased
// source header -> canonical column name.
type Mapping struct {
	Kind    string            `yaml:"kind"`
	Renames map[string]string `yaml:"renames"`
	// IdentifierFallback synthesizes Hashed_Participant_ID from the first
	// "*id*" column when no header maps to it.
	IdentifierFallback bool `yaml:"identifier_fallback"`
}

// MissingIdentifierError is returned when a table has no participant
// identifier and none can be synthesized.
type MissingIdentifierError struct {
	Table   string
	Column  string
	Headers []string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("table %s: no %s column and no column containing \"id\" to derive it from (headers: %s)",
		e.Table, e.Column, strings.Join(e.Headers, ", "))
}

// DefaultMappings returns the built-in rename maps keyed by table kind name.
func DefaultMappings() map[string]Mapping {
	return map[string]Mapping{
		model.KindParticipant.Name: {
			Kind: model.KindParticipant.Name,
			Renames: map[string]string{
				"hashed_participant_id": model.ColParticipantID,
				"state":                 model.ColState,
				"mmm_code":              model.ColMMMCode,
				"age_band":              model.ColAgeBand,
				"primary_disability":    model.ColPrimaryDisability,
			},
			IdentifierFallback: true,
		},
		model.KindPlan.Name: {
			Kind: model.KindPlan.Name,
			Renames: map[string]string{
				"hashed_participant_id":       model.ColParticipantID,
				"plan_id":                     model.ColPlanID,
				"plan_start_date":             model.ColPlanStartDate,
				"capital_at_budget_total_aud": model.ColBudget,
				"plan_management_mode":        model.ColPlanMode,
			},
		},
		model.KindClaimLine.Name: {
			Kind: model.KindClaimLine.Name,
			Renames: map[string]string{
				"hashed_participant_id":          model.ColParticipantID,
				"plan_id":                        model.ColPlanID,
				"service_date":                   model.ColServiceDate,
				"support_item_number":            model.ColSupportItem,
				"original_claimed_unitprice_aud": model.ColClaimedPrice,
				"paid_unitprice_aud":             model.ColPaidPrice,
				"benchmark_unitprice_aud":        model.ColBenchmarkPrice,
				"claim_id":                       model.ColClaimID,
				"source_system":                  model.ColSourceSystem,
			},
		},
	}
}

// Rename returns a copy of t whose headers are normalized and renamed per m.
// Only mappings whose source header is present apply; other columns pass
// through unchanged.
func Rename(t *model.Table, m Mapping) (*model.Table, error) {
	out := t.Clone()
	for i, col := range out.Columns {
		h := Header(col)
		if canon, ok := m.Renames[h]; ok {
			out.Columns[i] = canon
		} else {
			out.Columns[i] = h
		}
	}

	if m.IdentifierFallback && !out.Has(model.ColParticipantID) {
		src := fallbackIdentifier(out.Columns)
		if src < 0 {
			return nil, &MissingIdentifierError{
				Table:   t.Name,
				Column:  model.ColParticipantID,
				Headers: out.Columns,
			}
		}
		out.AddColumn(model.ColParticipantID, out.Column(out.Columns[src]))
	}
	return out, nil
}

// fallbackIdentifier returns the index of the first column, in header order,
// whose name contains "id".
func fallbackIdentifier(cols []string) int {
	for i, c := range cols {
		if strings.Contains(strings.ToLower(c), "id") {
			return i
		}
	}
	return -1
}
