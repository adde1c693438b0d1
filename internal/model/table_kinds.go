package model

// TableKind describes one of the tables a dataset upload may carry.
type TableKind struct {
	Name     string // e.g. "participant"
	File     string // expected archive entry name, e.g. "a_participant.csv"
	Required bool   // the pipeline cannot run without it
}

var (
	KindParticipant = TableKind{Name: "participant", File: "a_participant.csv", Required: true}
	KindPlan        = TableKind{Name: "plan", File: "b_plan.csv", Required: true}
	KindClaimLine   = TableKind{Name: "claim_line", File: "c_claim_line.csv", Required: true}
	KindBenchmark   = TableKind{Name: "benchmark_history", File: "benchmark_history.csv"}
	KindSuppItems   = TableKind{Name: "supplementary_item_list", File: "supplementary_item_list.csv"}
)

// AllTableKinds lists every expected table in canonical order.
var AllTableKinds = []TableKind{
	KindParticipant,
	KindPlan,
	KindClaimLine,
	KindBenchmark,
	KindSuppItems,
}

// ExpectedFiles returns the archive entry names the loader looks for.
func ExpectedFiles() []string {
	files := make([]string, len(AllTableKinds))
	for i, k := range AllTableKinds {
		files[i] = k.File
	}
	return files
}

// RequiredKinds returns the tables the pipeline cannot run without.
func RequiredKinds() []TableKind {
	var kinds []TableKind
	for _, k := range AllTableKinds {
		if k.Required {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// RequiredFiles returns the entry names of the required tables.
func RequiredFiles() []string {
	kinds := RequiredKinds()
	files := make([]string, len(kinds))
	for i, k := range kinds {
		files[i] = k.File
	}
	return files
}

// TableKindByName returns the TableKind for the given name, or ok=false.
func TableKindByName(name string) (TableKind, bool) {
	for _, k := range AllTableKinds {
		if k.Name == name {
			return k, true
		}
	}
	return TableKind{}, false
}

// TableKindByFile returns the TableKind whose expected file is name, or ok=false.
func TableKindByFile(file string) (TableKind, bool) {
	for _, k := range AllTableKinds {
		if k.File == file {
			return k, true
		}
	}
	return TableKind{}, false
}

// Canonical column names shared by the normalizer, the join engine and exports.
const (
	ColParticipantID     = "Hashed_Participant_ID"
	ColState             = "State"
	ColMMMCode           = "MMM_Code"
	ColAgeBand           = "Age_Band"
	ColPrimaryDisability = "Primary_Disability"

	ColPlanID        = "Plan_ID"
	ColPlanStartDate = "Plan_Start_Date"
	ColBudget        = "Capital_AT_Budget_Total_AUD"
	ColPlanMode      = "Plan_Management_Mode"

	ColClaimID        = "Claim_ID"
	ColServiceDate    = "Service_Date"
	ColSupportItem    = "Support_Item_Number"
	ColClaimedPrice   = "Original_Claimed_UnitPrice_AUD"
	ColPaidPrice      = "Paid_UnitPrice_AUD"
	ColBenchmarkPrice = "Benchmark_UnitPrice_AUD"
	ColSourceSystem   = "Source_System"
)
