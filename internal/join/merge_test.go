package join

import (
	"testing"

	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/normalize"
)

func strPtr(s string) *string { return &s }

func table(name string, cols []string, rows ...[]string) *model.Table {
	t := model.NewTable(name, cols)
	t.Rows = rows
	return t
}

func TestDecode(t *testing.T) {
	cls := normalize.NewClassifier(nil)
	parts := DecodeParticipants(table("a", []string{model.ColParticipantID, model.ColState, model.ColPrimaryDisability},
		[]string{"P1", "NSW", "Multiple Sclerosis"},
		[]string{"P2", "", ""},
	), cls)
	if !parts[0].Degenerative || parts[1].Degenerative {
		t.Errorf("degenerative flags = %v, %v; want true, false", parts[0].Degenerative, parts[1].Degenerative)
	}
	if parts[1].State != nil {
		t.Error("empty state should decode as nil")
	}

	plans := DecodePlans(table("b", []string{model.ColPlanID, model.ColPlanStartDate, model.ColBudget},
		[]string{"PL1", "2024-01-01", "1000"},
		[]string{"PL2", "garbage", "n/a"},
	))
	if plans[0].StartDate == nil || !plans[0].Budget.Valid {
		t.Error("PL1 date and budget should parse")
	}
	if plans[1].StartDate != nil || plans[1].Budget.Valid {
		t.Error("PL2 unparseable date and budget should be null")
	}

	claims := DecodeClaims(table("c", []string{model.ColClaimID, model.ColPaidPrice},
		[]string{"C1", "300"},
	))
	if claims[0].PlanID != nil || claims[0].BenchmarkPrice.Valid {
		t.Error("absent columns should decode as null")
	}
	if !claims[0].PaidPrice.Valid || claims[0].PaidPrice.Decimal.IntPart() != 300 {
		t.Errorf("paid = %v", claims[0].PaidPrice)
	}
}

func TestMerge_LeftJoinCardinality(t *testing.T) {
	parts := []model.Participant{
		{ID: "P1", State: strPtr("NSW"), Degenerative: true},
		{ID: "P1", State: strPtr("VIC")}, // duplicate, ignored
		{ID: ""},
	}
	plans := []model.Plan{
		{ID: "PL1", ParticipantID: strPtr("P1")},
		{ID: "PL2", ParticipantID: strPtr("P9")}, // participant missing
		{ID: "PL1", ParticipantID: strPtr("P2")}, // duplicate, ignored
		{ID: "PL3"},                               // null participant key
	}
	claims := []model.ClaimLine{
		{ClaimID: strPtr("C1"), PlanID: strPtr("PL1")},
		{ClaimID: strPtr("C2"), PlanID: strPtr("PL2")},
		{ClaimID: strPtr("C3"), PlanID: strPtr("NOPE")},
		{ClaimID: strPtr("C4")},
		{ClaimID: strPtr("C5"), PlanID: strPtr("PL3")},
		{ClaimID: strPtr("C6"), PlanID: strPtr("PL1")},
	}

	res := Merge(parts, plans, claims)

	if len(res.Records) != len(claims) {
		t.Fatalf("records = %d, want %d", len(res.Records), len(claims))
	}
	for i, r := range res.Records {
		if *r.ClaimID != *claims[i].ClaimID {
			t.Errorf("record %d claim = %s, want %s", i, *r.ClaimID, *claims[i].ClaimID)
		}
	}

	c1 := res.Records[0]
	if c1.State == nil || *c1.State != "NSW" || !c1.IsDegenerative() {
		t.Errorf("C1 should join to first P1 row: state=%v degenerative=%v", c1.State, c1.Degenerative)
	}
	if c2 := res.Records[1]; c2.ParticipantID == nil || c2.State != nil || c2.Degenerative != nil {
		t.Error("C2 should carry plan fields but no participant fields")
	}
	if c3 := res.Records[2]; c3.ParticipantID != nil || c3.Budget.Valid {
		t.Error("C3 has no plan; plan fields must be null")
	}
	if res.UnmatchedPlan != 2 {
		t.Errorf("UnmatchedPlan = %d, want 2", res.UnmatchedPlan)
	}
	if res.UnmatchedParticipant != 4 {
		t.Errorf("UnmatchedParticipant = %d, want 4", res.UnmatchedParticipant)
	}
	if res.DuplicatePlans != 1 || res.DuplicateParticipants != 1 {
		t.Errorf("duplicates = %d plans, %d participants; want 1, 1", res.DuplicatePlans, res.DuplicateParticipants)
	}
	if len(res.Plans) != 3 {
		t.Errorf("Plans = %d, want 3", len(res.Plans))
	}
}

func TestMerge_ClaimParticipantFallback(t *testing.T) {
	parts := []model.Participant{{ID: "P1", State: strPtr("QLD")}}
	claims := []model.ClaimLine{{ClaimID: strPtr("C1"), PlanID: strPtr("MISSING"), ParticipantID: strPtr("P1")}}

	res := Merge(parts, nil, claims)
	if r := res.Records[0]; r.State == nil || *r.State != "QLD" {
		t.Error("claim's own participant id should be used when the plan is missing")
	}
}

func TestPlanBase(t *testing.T) {
	parts := []model.Participant{{ID: "P1", State: strPtr("NSW"), MMMCode: strPtr("1")}}
	plans := []model.Plan{
		{ID: "PL1", ParticipantID: strPtr("P1")},
		{ID: "PL2"},
	}
	base := Merge(parts, plans, nil).PlanBase()
	if len(base) != 2 {
		t.Fatalf("base = %d rows, want 2", len(base))
	}
	if base[0].State == nil || *base[0].MMMCode != "1" {
		t.Error("PL1 should carry participant State and MMM_Code")
	}
	if base[1].State != nil {
		t.Error("PL2 has no participant")
	}
	if !base[0].Paid.IsZero() || base[0].DrawPct != nil {
		t.Error("base rows start with zero paid and no draw")
	}
}
