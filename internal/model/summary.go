package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoadSummary describes what the loader found in an upload.
type LoadSummary struct {
	Name      string         `json:"name"`
	SHA256    string         `json:"sha256"`
	SizeBytes int            `json:"size_bytes"`
	Tables    map[string]int `json:"tables"` // file name -> data rows
	Missing   []string       `json:"missing,omitempty"`
}

// KPI holds the headline cards computed over plan-level draw rows.
type KPI struct {
	Plans       int             `json:"plans"`
	BudgetTotal decimal.Decimal `json:"budget_total"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
	UtilPct     float64         `json:"util_pct"`
	ZeroDraw    int             `json:"zero_draw"`
	PartialDraw int             `json:"partial_draw"`
	// UndefinedDraw counts plans whose DrawPct is nil (zero or null budget).
	UndefinedDraw int `json:"undefined_draw"`
}

// GroupUtil is the utilisation of one State or MMM region.
type GroupUtil struct {
	Key     string          `json:"key"`
	Plans   int             `json:"plans"`
	Paid    decimal.Decimal `json:"paid"`
	Budget  decimal.Decimal `json:"budget"`
	UtilPct float64         `json:"util_pct"`
}

// CumulativePoint is one day of the cumulative paid-claim share curve.
type CumulativePoint struct {
	Day   int     `json:"day"`
	Count int     `json:"count"`
	Cum   int     `json:"cum"`
	Pct   float64 `json:"pct"`
}

// LeagueRow is one support item in the league table.
type LeagueRow struct {
	SupportItem string              `json:"support_item_number"`
	Claims      int                 `json:"claims"`
	Paid        decimal.Decimal     `json:"paid"`
	AvgPrice    decimal.NullDecimal `json:"avg_price"`
}

// HistogramBin counts values in [Lower, Upper). The last bin is closed.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Waterfall is the budget attrition from approved to claimed to paid.
type Waterfall struct {
	Budget          decimal.Decimal `json:"budget"`
	Claimed         decimal.Decimal `json:"claimed"`
	Paid            decimal.Decimal `json:"paid"`
	UtilisationRate float64         `json:"utilisation_rate"`
}

// Report is everything one recomputation produces for the presentation layer.
type Report struct {
	RunID    string   `json:"run_id"`
	Missing  []string `json:"missing,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	// NoData is set when the filters removed every row; aggregates are then empty.
	NoData bool `json:"no_data"`

	MergedRows   int                 `json:"merged_rows"`
	FilteredRows int                 `json:"filtered_rows"`
	Options      map[string][]string `json:"options,omitempty"`

	KPI              *KPI              `json:"kpi,omitempty"`
	ByState          []GroupUtil       `json:"by_state,omitempty"`
	ByMMM            []GroupUtil       `json:"by_mmm,omitempty"`
	DrawDistribution []HistogramBin    `json:"draw_distribution,omitempty"`
	Waterfall        *Waterfall        `json:"waterfall,omitempty"`
	BreachRatios     []HistogramBin    `json:"breach_ratios,omitempty"`
	Cumulative       []CumulativePoint `json:"cumulative,omitempty"`
	League           []LeagueRow       `json:"league,omitempty"`
	Preview          []MergedRecord    `json:"preview,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}
