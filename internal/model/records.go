package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participant is one row of the participant table after normalization.
type Participant struct {
	ID                string
	State             *string
	MMMCode           *string
	AgeBand           *string
	PrimaryDisability *string
	Degenerative      bool
}

// Plan is one funding period. Budget is null when the cell was empty or
// not a number.
type Plan struct {
	ID             string
	ParticipantID  *string
	StartDate      *time.Time
	Budget         decimal.NullDecimal
	ManagementMode *string
}

// ClaimLine is a single claimed AT item. ParticipantID is only populated
// when the claim table carries its own participant column.
type ClaimLine struct {
	ClaimID        *string
	PlanID         *string
	ParticipantID  *string
	ServiceDate    *time.Time
	SupportItem    *string
	ClaimedPrice   decimal.NullDecimal
	PaidPrice      decimal.NullDecimal
	BenchmarkPrice decimal.NullDecimal
	SourceSystem   *string
}

// MergedRecord is a claim line left-joined with its plan and participant.
// Plan and participant fields are nil when the join found no match.
type MergedRecord struct {
	ClaimID        *string             `json:"claim_id"`
	PlanID         *string             `json:"plan_id"`
	ServiceDate    *time.Time          `json:"service_date"`
	SupportItem    *string             `json:"support_item_number"`
	ClaimedPrice   decimal.NullDecimal `json:"original_claimed_unitprice_aud"`
	PaidPrice      decimal.NullDecimal `json:"paid_unitprice_aud"`
	BenchmarkPrice decimal.NullDecimal `json:"benchmark_unitprice_aud"`
	SourceSystem   *string             `json:"source_system"`

	ParticipantID  *string             `json:"hashed_participant_id"`
	PlanStartDate  *time.Time          `json:"plan_start_date"`
	Budget         decimal.NullDecimal `json:"capital_at_budget_total_aud"`
	ManagementMode *string             `json:"plan_management_mode"`

	State        *string `json:"state"`
	MMMCode      *string `json:"mmm_code"`
	AgeBand      *string `json:"age_band"`
	Degenerative *bool   `json:"degenerative_flag"`
}

// IsDegenerative reports whether the joined participant carries the flag.
func (r *MergedRecord) IsDegenerative() bool {
	return r.Degenerative != nil && *r.Degenerative
}

// IsBreach reports whether the claimed price exceeds a positive benchmark.
// A null or zero benchmark never breaches.
func (r *MergedRecord) IsBreach() bool {
	if !r.BenchmarkPrice.Valid || !r.ClaimedPrice.Valid {
		return false
	}
	if !r.BenchmarkPrice.Decimal.IsPositive() {
		return false
	}
	return r.ClaimedPrice.Decimal.GreaterThan(r.BenchmarkPrice.Decimal)
}

// PlanDraw is the draw-down of one plan against the filtered claims.
// DrawPct is nil when the budget is null or zero.
type PlanDraw struct {
	PlanID         string              `json:"plan_id"`
	ParticipantID  *string             `json:"hashed_participant_id"`
	State          *string             `json:"state"`
	MMMCode        *string             `json:"mmm_code"`
	AgeBand        *string             `json:"age_band"`
	ManagementMode *string             `json:"plan_management_mode"`
	StartDate      *time.Time          `json:"plan_start_date"`
	Budget         decimal.NullDecimal `json:"capital_at_budget_total_aud"`
	Paid           decimal.Decimal     `json:"paid"`
	DrawPct        *float64            `json:"draw_pct"`
}
