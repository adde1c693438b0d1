package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/atexplorer/internal/aggregate"
	"github.com/gyeh/atexplorer/internal/dataset"
	"github.com/gyeh/atexplorer/internal/filter"
	"github.com/gyeh/atexplorer/internal/join"
	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/normalize"
)

// Options carries the tunables of a run. Zero values take the defaults.
type Options struct {
	// Mappings overrides rename maps by table kind name.
	Mappings  map[string]normalize.Mapping
	Keywords  []string
	Aggregate aggregate.Options
}

func (o Options) mapping(kind model.TableKind) normalize.Mapping {
	if m, ok := o.Mappings[kind.Name]; ok {
		return m
	}
	return normalize.DefaultMappings()[kind.Name]
}

// Prepared is a bundle that went through preflight, normalization and the
// join. It is immutable, so one Prepared can serve any number of
// selections.
type Prepared struct {
	Name     string
	SHA256   string
	Missing  []string
	Warnings []string
	Join     *join.Result
	Options  map[string][]string

	base []model.PlanDraw
	opts Options
}

// Run executes the full pipeline: preflight → normalize → join → filter →
// aggregate.
func Run(b *dataset.Bundle, sel filter.Selection, opts Options, log zerolog.Logger) (*model.Report, error) {
	p, err := Prepare(b, opts, log)
	if err != nil {
		return nil, err
	}
	return p.Report(sel, log)
}

// Prepare runs the selection-independent phases over b.
func Prepare(b *dataset.Bundle, opts Options, log zerolog.Logger) (*Prepared, error) {
	start := time.Now()

	// Phase 1: Preflight
	log.Info().Str("upload", b.Name).Str("sha256", b.SHA256).Msg("starting preflight")
	tables, err := Preflight(b)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}
	p := &Prepared{
		Name:    b.Name,
		SHA256:  b.SHA256,
		Missing: b.Missing,
		opts:    opts,
	}
	if len(b.Missing) > 0 {
		msg := "optional tables not found: " + strings.Join(b.Missing, ", ")
		p.Warnings = append(p.Warnings, msg)
		log.Warn().Strs("missing", b.Missing).Msg("optional tables not found")
	}

	// Phase 2: Normalize
	normStart := time.Now()
	for _, kind := range model.RequiredKinds() {
		t, err := normalize.Rename(tables[kind.Name], opts.mapping(kind))
		if err != nil {
			return nil, &PipelineError{Phase: "normalize", Err: err}
		}
		tables[kind.Name] = t
	}
	log.Info().Dur("duration", time.Since(normStart)).Msg("headers normalized")

	// Phase 3: Join
	joinStart := time.Now()
	cls := normalize.NewClassifier(opts.Keywords)
	parts := join.DecodeParticipants(tables[model.KindParticipant.Name], cls)
	plans := join.DecodePlans(tables[model.KindPlan.Name])
	claims := join.DecodeClaims(tables[model.KindClaimLine.Name])
	res := join.Merge(parts, plans, claims)
	p.Join = res
	p.base = res.PlanBase()

	if res.DuplicateParticipants > 0 {
		p.Warnings = append(p.Warnings, fmt.Sprintf("%d duplicate participant rows ignored", res.DuplicateParticipants))
		log.Warn().Int("rows", res.DuplicateParticipants).Msg("duplicate participant ids, keeping first")
	}
	if res.DuplicatePlans > 0 {
		p.Warnings = append(p.Warnings, fmt.Sprintf("%d duplicate plan rows ignored", res.DuplicatePlans))
		log.Warn().Int("rows", res.DuplicatePlans).Msg("duplicate plan ids, keeping first")
	}
	log.Info().
		Int("participants", len(parts)).
		Int("plans", len(res.Plans)).
		Int("claims", len(res.Records)).
		Int("unmatched_plan", res.UnmatchedPlan).
		Int("unmatched_participant", res.UnmatchedParticipant).
		Dur("duration", time.Since(joinStart)).
		Msg("tables joined")

	opt := filter.Options(res.Records)
	p.Options = make(map[string][]string, len(opt))
	for f, vals := range opt {
		p.Options[string(f)] = vals
	}

	log.Debug().Dur("duration", time.Since(start)).Msg("dataset prepared")
	return p, nil
}

// Report runs the filter and aggregate phases for one selection. An empty
// filter result is not an error: the report comes back with NoData set and
// an EmptyResultWarning among its warnings.
func (p *Prepared) Report(sel filter.Selection, log zerolog.Logger) (*model.Report, error) {
	start := time.Now()
	rep := &model.Report{
		RunID:      uuid.New().String(),
		Missing:    p.Missing,
		Warnings:   append([]string(nil), p.Warnings...),
		MergedRows: len(p.Join.Records),
		Options:    p.Options,
	}
	log = log.With().Str("run_id", rep.RunID).Logger()

	// Phase 4: Filter
	filtered := filter.Apply(p.Join.Records, sel)
	rep.FilteredRows = len(filtered)
	log.Info().Int("merged", rep.MergedRows).Int("filtered", rep.FilteredRows).Msg("filters applied")

	// Phase 5: Aggregate
	agg, err := aggregate.Compute(p.base, filtered, p.opts.Aggregate)
	if errors.Is(err, aggregate.ErrEmptyInput) {
		w := &EmptyResultWarning{Merged: rep.MergedRows}
		rep.NoData = true
		rep.Warnings = append(rep.Warnings, w.Error())
		rep.Duration = time.Since(start)
		log.Warn().Msg("no rows match the current filters, skipping aggregation")
		return rep, nil
	}
	if err != nil {
		return nil, &PipelineError{Phase: "aggregate", Err: err}
	}

	rep.KPI = &agg.KPI
	rep.ByState = agg.ByState
	rep.ByMMM = agg.ByMMM
	rep.DrawDistribution = agg.DrawDistribution
	rep.Waterfall = &agg.Waterfall
	rep.BreachRatios = agg.BreachRatios
	rep.Cumulative = agg.Cumulative
	rep.League = agg.League
	rep.Preview = agg.Preview
	rep.Duration = time.Since(start)

	log.Info().
		Int("plans", agg.KPI.Plans).
		Str("paid_total", agg.KPI.PaidTotal.StringFixed(2)).
		Str("budget_total", agg.KPI.BudgetTotal.StringFixed(2)).
		Float64("util_pct", agg.KPI.UtilPct).
		Dur("duration", rep.Duration).
		Msg("report complete")
	return rep, nil
}

// Draws recomputes the plan draw rows for sel, for export.
func (p *Prepared) Draws(sel filter.Selection) ([]model.MergedRecord, []model.PlanDraw) {
	filtered := filter.Apply(p.Join.Records, sel)
	return filtered, aggregate.PlanDraws(p.base, filtered)
}

// Preflight checks that the three required tables are present and returns
// them keyed by table kind name.
func Preflight(b *dataset.Bundle) (map[string]*model.Table, error) {
	tables := make(map[string]*model.Table)
	var missing []string
	for _, kind := range model.RequiredKinds() {
		t, ok := b.Table(kind)
		if !ok {
			missing = append(missing, kind.File)
			continue
		}
		tables[kind.Name] = t
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingRequiredTableError{Missing: missing}
	}
	return tables, nil
}
