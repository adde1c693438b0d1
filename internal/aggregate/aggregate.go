package aggregate

import (
	"errors"

	"github.com/gyeh/atexplorer/internal/model"
)

const (
	DefaultLeagueSize  = 50
	DefaultMaxBins     = 40
	DefaultPreviewRows = 300
)

// ErrEmptyInput is returned by Compute when there are no filtered records.
var ErrEmptyInput = errors.New("no records to aggregate")

// Options sizes the ranked and binned outputs. Zero values take the defaults.
type Options struct {
	LeagueSize  int
	MaxBins     int
	PreviewRows int
}

func (o Options) withDefaults() Options {
	if o.LeagueSize <= 0 {
		o.LeagueSize = DefaultLeagueSize
	}
	if o.MaxBins <= 0 {
		o.MaxBins = DefaultMaxBins
	}
	if o.PreviewRows <= 0 {
		o.PreviewRows = DefaultPreviewRows
	}
	return o
}

// Result bundles every aggregate for one filtered record set.
type Result struct {
	Draws            []model.PlanDraw
	KPI              model.KPI
	ByState          []model.GroupUtil
	ByMMM            []model.GroupUtil
	DrawDistribution []model.HistogramBin
	Waterfall        model.Waterfall
	BreachRatios     []model.HistogramBin
	Cumulative       []model.CumulativePoint
	League           []model.LeagueRow
	Preview          []model.MergedRecord
}

// Compute runs every aggregation over the filtered records. base is the
// unfiltered plan table enriched with participant fields.
func Compute(base []model.PlanDraw, filtered []model.MergedRecord, opts Options) (*Result, error) {
	if len(filtered) == 0 {
		return nil, ErrEmptyInput
	}
	opts = opts.withDefaults()

	draws := PlanDraws(base, filtered)
	kpi := KPIs(draws)

	preview := filtered
	if len(preview) > opts.PreviewRows {
		preview = preview[:opts.PreviewRows]
	}

	return &Result{
		Draws:            draws,
		KPI:              kpi,
		ByState:          ByState(draws),
		ByMMM:            ByMMM(draws),
		DrawDistribution: DrawDistribution(draws, opts.MaxBins),
		Waterfall:        BuildWaterfall(kpi, filtered),
		BreachRatios:     Histogram(BreachRatios(filtered), opts.MaxBins),
		Cumulative:       CumulativeShare(filtered),
		League:           League(filtered, opts.LeagueSize),
		Preview:          preview,
	}, nil
}
