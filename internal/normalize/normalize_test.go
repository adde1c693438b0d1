package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyeh/atexplorer/internal/model"
)

func strPtr(s string) *string { return &s }

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string // "" means nil
	}{
		{"2024-03-01", "2024-03-01"},
		{" 2024-03-01 ", "2024-03-01"},
		{"03/01/2024", "2024-03-01"},
		{"3/1/2024", "2024-03-01"},
		{"2024/03/01", "2024-03-01"},
		{"2024-03-01 10:30:00", "2024-03-01"},
		{"2024-03-01T10:30:00Z", "2024-03-01"},
		{"Mar 1, 2024", "2024-03-01"},
		{"", ""},
		{"not a date", ""},
		{"2024-13-45", ""},
	}
	for _, tt := range tests {
		got := ParseDate(tt.in)
		if tt.want == "" {
			if got != nil {
				t.Errorf("ParseDate(%q) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("ParseDate(%q) = nil, want %s", tt.in, tt.want)
			continue
		}
		if s := got.Format("2006-01-02"); s != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, s, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		end  time.Time
		want int
	}{
		{time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC), 0},
		{time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), -1},
		{time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC), -1},
	}
	for _, tt := range tests {
		if got := DaysBetween(start, tt.end); got != tt.want {
			t.Errorf("DaysBetween(%s) = %d, want %d", tt.end, got, tt.want)
		}
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  string
	}{
		{"300", true, "300"},
		{"1,250.50", true, "1250.5"},
		{"$99.99", true, "99.99"},
		{" 0 ", true, "0"},
		{"", false, ""},
		{"n/a", false, ""},
	}
	for _, tt := range tests {
		got := ParseMoney(tt.in)
		if got.Valid != tt.valid {
			t.Errorf("ParseMoney(%q).Valid = %v, want %v", tt.in, got.Valid, tt.valid)
			continue
		}
		if tt.valid && !got.Decimal.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseMoney(%q) = %s, want %s", tt.in, got.Decimal, tt.want)
		}
	}
}

func TestRatioAndPercent(t *testing.T) {
	if _, ok := Ratio(decimal.NewFromInt(5), decimal.Zero); ok {
		t.Error("Ratio with zero denominator should not be ok")
	}
	r, ok := Ratio(decimal.NewFromInt(300), decimal.NewFromInt(1000))
	if !ok || r != 0.3 {
		t.Errorf("Ratio(300, 1000) = %v, %v; want 0.3, true", r, ok)
	}
	if p := Percent(decimal.NewFromInt(300), decimal.NewFromInt(1000)); p != 30 {
		t.Errorf("Percent(300, 1000) = %v, want 30", p)
	}
	if p := Percent(decimal.NewFromInt(300), decimal.Zero); p != 0 {
		t.Errorf("Percent with zero budget = %v, want 0", p)
	}
}

func TestHeaders(t *testing.T) {
	got := Headers([]string{"\ufeffPlan_ID ", "  STATE", "mmm_code"})
	want := []string{"plan_id", "state", "mmm_code"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Headers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" NSW ", "NSW"},
		{"NA", ""},
		{" N/A ", ""},
		{"null", ""},
		{"NaN", ""},
		{"#N/A", ""},
		{"na", "na"},
		{"NAS", "NAS"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Cell(tt.in); got != tt.want {
			t.Errorf("Cell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(nil)
	tests := []struct {
		text *string
		want bool
	}{
		{strPtr("Multiple Sclerosis"), true},
		{strPtr("MOTOR NEURONE DISEASE"), true},
		{strPtr("Duchenne muscular dystrophy"), true},
		{strPtr("Huntington's disease"), true},
		{strPtr("Cerebral palsy"), false},
		{strPtr("sclerosis"), false},
		{strPtr(""), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := c.Degenerative(tt.text); got != tt.want {
			t.Errorf("Degenerative(%v) = %v, want %v", tt.text, got, tt.want)
		}
	}

	custom := NewClassifier([]string{"parkinson", "  "})
	if !custom.Degenerative(strPtr("Parkinson's")) {
		t.Error("custom keyword not matched")
	}
	if custom.Degenerative(strPtr("multiple sclerosis")) {
		t.Error("custom classifier should not use default keywords")
	}
	if !NewClassifier([]string{" "}).Degenerative(strPtr("huntington")) {
		t.Error("blank keyword list should fall back to defaults")
	}
}

func TestRename(t *testing.T) {
	m := DefaultMappings()[model.KindPlan.Name]
	tbl := model.NewTable("b_plan.csv", []string{" Plan_ID", "HASHED_PARTICIPANT_ID", "capital_at_budget_total_aud", "extra_col"})
	tbl.Rows = [][]string{{"PL1", "P1", "1000", "x"}}

	out, err := Rename(tbl, m)
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	want := []string{model.ColPlanID, model.ColParticipantID, model.ColBudget, "extra_col"}
	for i := range want {
		if out.Columns[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, out.Columns[i], want[i])
		}
	}
	if tbl.Columns[0] != " Plan_ID" {
		t.Error("Rename must not modify the input table")
	}
	if v, _ := out.Value(0, model.ColBudget); v != "1000" {
		t.Errorf("budget = %q, want 1000", v)
	}
}

func TestRename_IdentifierFallback(t *testing.T) {
	m := DefaultMappings()[model.KindParticipant.Name]

	t.Run("first id column wins", func(t *testing.T) {
		tbl := model.NewTable("a_participant.csv", []string{"state", "Person_ID", "other_id"})
		tbl.Rows = [][]string{{"NSW", "P1", "X1"}, {"VIC", "P2", "X2"}}
		out, err := Rename(tbl, m)
		if err != nil {
			t.Fatalf("Rename: %v", err)
		}
		ids := out.Column(model.ColParticipantID)
		if ids[0] != "P1" || ids[1] != "P2" {
			t.Errorf("synthesized ids = %v, want [P1 P2]", ids)
		}
		if len(tbl.Rows[0]) != 3 {
			t.Error("fallback must not grow the input rows")
		}
	})

	t.Run("canonical column present", func(t *testing.T) {
		tbl := model.NewTable("a_participant.csv", []string{"other_id", "hashed_participant_id"})
		tbl.Rows = [][]string{{"X1", "P1"}}
		out, err := Rename(tbl, m)
		if err != nil {
			t.Fatalf("Rename: %v", err)
		}
		if v, _ := out.Value(0, model.ColParticipantID); v != "P1" {
			t.Errorf("id = %q, want P1", v)
		}
		if len(out.Columns) != 2 {
			t.Errorf("no column should be synthesized, got %v", out.Columns)
		}
	})

	t.Run("no candidate", func(t *testing.T) {
		tbl := model.NewTable("a_participant.csv", []string{"state", "age_band"})
		_, err := Rename(tbl, m)
		var mie *MissingIdentifierError
		if !errors.As(err, &mie) {
			t.Fatalf("expected MissingIdentifierError, got %v", err)
		}
		if mie.Table != "a_participant.csv" {
			t.Errorf("Table = %q", mie.Table)
		}
	})
}
