package model

import "time"

// MergedRow mirrors the Parquet export schema for a merged claim line.
// Money is written as float64 and dates as ISO strings.
type MergedRow struct {
	ClaimID        *string  `parquet:"claim_id,optional"`
	PlanID         *string  `parquet:"plan_id,optional"`
	ServiceDate    *string  `parquet:"service_date,optional"`
	SupportItem    *string  `parquet:"support_item_number,optional"`
	ClaimedPrice   *float64 `parquet:"original_claimed_unitprice_aud,optional"`
	PaidPrice      *float64 `parquet:"paid_unitprice_aud,optional"`
	BenchmarkPrice *float64 `parquet:"benchmark_unitprice_aud,optional"`
	SourceSystem   *string  `parquet:"source_system,optional"`

	ParticipantID  *string  `parquet:"hashed_participant_id,optional"`
	PlanStartDate  *string  `parquet:"plan_start_date,optional"`
	Budget         *float64 `parquet:"capital_at_budget_total_aud,optional"`
	ManagementMode *string  `parquet:"plan_management_mode,optional"`

	State        *string `parquet:"state,optional"`
	MMMCode      *string `parquet:"mmm_code,optional"`
	AgeBand      *string `parquet:"age_band,optional"`
	Degenerative *bool   `parquet:"degenerative_flag,optional"`
}

// PlanDrawRow mirrors the Parquet export schema for a plan draw row.
type PlanDrawRow struct {
	PlanID         string   `parquet:"plan_id"`
	ParticipantID  *string  `parquet:"hashed_participant_id,optional"`
	State          *string  `parquet:"state,optional"`
	MMMCode        *string  `parquet:"mmm_code,optional"`
	AgeBand        *string  `parquet:"age_band,optional"`
	ManagementMode *string  `parquet:"plan_management_mode,optional"`
	StartDate      *string  `parquet:"plan_start_date,optional"`
	Budget         *float64 `parquet:"capital_at_budget_total_aud,optional"`
	Paid           float64  `parquet:"paid"`
	DrawPct        *float64 `parquet:"draw_pct,optional"`
}

// ToRow converts a MergedRecord to its export row.
func (r *MergedRecord) ToRow() MergedRow {
	return MergedRow{
		ClaimID:        r.ClaimID,
		PlanID:         r.PlanID,
		ServiceDate:    isoDate(r.ServiceDate),
		SupportItem:    r.SupportItem,
		ClaimedPrice:   nullFloat(r.ClaimedPrice.Valid, r.ClaimedPrice.Decimal.InexactFloat64()),
		PaidPrice:      nullFloat(r.PaidPrice.Valid, r.PaidPrice.Decimal.InexactFloat64()),
		BenchmarkPrice: nullFloat(r.BenchmarkPrice.Valid, r.BenchmarkPrice.Decimal.InexactFloat64()),
		SourceSystem:   r.SourceSystem,
		ParticipantID:  r.ParticipantID,
		PlanStartDate:  isoDate(r.PlanStartDate),
		Budget:         nullFloat(r.Budget.Valid, r.Budget.Decimal.InexactFloat64()),
		ManagementMode: r.ManagementMode,
		State:          r.State,
		MMMCode:        r.MMMCode,
		AgeBand:        r.AgeBand,
		Degenerative:   r.Degenerative,
	}
}

// ToRow converts a PlanDraw to its export row.
func (d *PlanDraw) ToRow() PlanDrawRow {
	return PlanDrawRow{
		PlanID:         d.PlanID,
		ParticipantID:  d.ParticipantID,
		State:          d.State,
		MMMCode:        d.MMMCode,
		AgeBand:        d.AgeBand,
		ManagementMode: d.ManagementMode,
		StartDate:      isoDate(d.StartDate),
		Budget:         nullFloat(d.Budget.Valid, d.Budget.Decimal.InexactFloat64()),
		Paid:           d.Paid.InexactFloat64(),
		DrawPct:        d.DrawPct,
	}
}

func isoDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func nullFloat(valid bool, v float64) *float64 {
	if !valid {
		return nil
	}
	return &v
}
