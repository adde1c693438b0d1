package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/normalize"
)

// UnknownGroup labels rows whose grouping column is null.
const UnknownGroup = "(unknown)"

// PlanDraws returns a draw row for every base plan whose Plan_ID appears in
// filtered. Paid sums the filtered paid unit prices of that plan; a null
// paid price contributes nothing. DrawPct stays nil for a null or zero
// budget.
func PlanDraws(base []model.PlanDraw, filtered []model.MergedRecord) []model.PlanDraw {
	paid := make(map[string]decimal.Decimal)
	for i := range filtered {
		r := &filtered[i]
		if r.PlanID == nil {
			continue
		}
		sum := paid[*r.PlanID]
		if r.PaidPrice.Valid {
			sum = sum.Add(r.PaidPrice.Decimal)
		}
		paid[*r.PlanID] = sum
	}

	out := make([]model.PlanDraw, 0, len(paid))
	for _, b := range base {
		sum, ok := paid[b.PlanID]
		if !ok {
			continue
		}
		d := b
		d.Paid = sum
		d.DrawPct = nil
		if b.Budget.Valid {
			if pct, ok := normalize.Ratio(sum, b.Budget.Decimal); ok {
				d.DrawPct = &pct
			}
		}
		out = append(out, d)
	}
	return out
}

// KPIs computes the headline totals over plan draw rows. Plans with an
// undefined DrawPct count toward neither the zero nor the partial draw.
func KPIs(draws []model.PlanDraw) model.KPI {
	k := model.KPI{Plans: len(draws)}
	for i := range draws {
		d := &draws[i]
		if d.Budget.Valid {
			k.BudgetTotal = k.BudgetTotal.Add(d.Budget.Decimal)
		}
		k.PaidTotal = k.PaidTotal.Add(d.Paid)
		switch {
		case d.DrawPct == nil:
			k.UndefinedDraw++
		case *d.DrawPct == 0:
			k.ZeroDraw++
			k.PartialDraw++
		case *d.DrawPct < 1:
			k.PartialDraw++
		}
	}
	k.UtilPct = normalize.Percent(k.PaidTotal, k.BudgetTotal)
	return k
}

// ByState groups draw rows by participant State.
func ByState(draws []model.PlanDraw) []model.GroupUtil {
	return GroupUtilisation(draws, func(d *model.PlanDraw) *string { return d.State })
}

// ByMMM groups draw rows by participant MMM_Code.
func ByMMM(draws []model.PlanDraw) []model.GroupUtil {
	return GroupUtilisation(draws, func(d *model.PlanDraw) *string { return d.MMMCode })
}

// GroupUtilisation sums Paid and Budget per key and derives utilisation.
// A group with zero budget reports 0%. Groups are ordered by key.
func GroupUtilisation(draws []model.PlanDraw, key func(*model.PlanDraw) *string) []model.GroupUtil {
	groups := make(map[string]*model.GroupUtil)
	for i := range draws {
		d := &draws[i]
		k := UnknownGroup
		if v := key(d); v != nil {
			k = *v
		}
		g, ok := groups[k]
		if !ok {
			g = &model.GroupUtil{Key: k}
			groups[k] = g
		}
		g.Plans++
		g.Paid = g.Paid.Add(d.Paid)
		if d.Budget.Valid {
			g.Budget = g.Budget.Add(d.Budget.Decimal)
		}
	}

	out := make([]model.GroupUtil, 0, len(groups))
	for _, g := range groups {
		g.UtilPct = normalize.Percent(g.Paid, g.Budget)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// DrawDistribution bins the defined DrawPct values of the draw rows.
func DrawDistribution(draws []model.PlanDraw, maxBins int) []model.HistogramBin {
	values := make([]float64, 0, len(draws))
	for i := range draws {
		if draws[i].DrawPct != nil {
			values = append(values, *draws[i].DrawPct)
		}
	}
	return Histogram(values, maxBins)
}
