package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/normalize"
)

// CumulativeShare builds the cumulative paid-claim share curve against days
// since plan start. Claims without both dates, or dated before the plan
// started, are excluded. Days are sorted before the running sum.
func CumulativeShare(filtered []model.MergedRecord) []model.CumulativePoint {
	counts := make(map[int]int)
	total := 0
	for i := range filtered {
		r := &filtered[i]
		if r.ServiceDate == nil || r.PlanStartDate == nil {
			continue
		}
		day := normalize.DaysBetween(*r.PlanStartDate, *r.ServiceDate)
		if day < 0 {
			continue
		}
		counts[day]++
		total++
	}
	if total == 0 {
		return nil
	}

	days := make([]int, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Ints(days)

	out := make([]model.CumulativePoint, len(days))
	cum := 0
	for i, d := range days {
		cum += counts[d]
		out[i] = model.CumulativePoint{
			Day:   d,
			Count: counts[d],
			Cum:   cum,
			Pct:   float64(cum) / float64(total) * 100,
		}
	}
	return out
}

type leagueAcc struct {
	row        model.LeagueRow
	claimedSum decimal.Decimal
	claimedN   int64
}

// League ranks support items by paid amount, descending, keeping the top
// limit rows. Claims with no support item are skipped. AvgPrice is the mean
// of the non-null original claimed prices.
func League(filtered []model.MergedRecord, limit int) []model.LeagueRow {
	accs := make(map[string]*leagueAcc)
	for i := range filtered {
		r := &filtered[i]
		if r.SupportItem == nil {
			continue
		}
		a, ok := accs[*r.SupportItem]
		if !ok {
			a = &leagueAcc{row: model.LeagueRow{SupportItem: *r.SupportItem}}
			accs[*r.SupportItem] = a
		}
		a.row.Claims++
		if r.PaidPrice.Valid {
			a.row.Paid = a.row.Paid.Add(r.PaidPrice.Decimal)
		}
		if r.ClaimedPrice.Valid {
			a.claimedSum = a.claimedSum.Add(r.ClaimedPrice.Decimal)
			a.claimedN++
		}
	}

	out := make([]model.LeagueRow, 0, len(accs))
	for _, a := range accs {
		if a.claimedN > 0 {
			a.row.AvgPrice = decimal.NewNullDecimal(a.claimedSum.DivRound(decimal.NewFromInt(a.claimedN), 4))
		}
		out = append(out, a.row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Paid.Cmp(out[j].Paid); c != 0 {
			return c > 0
		}
		return out[i].SupportItem < out[j].SupportItem
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BreachRatios returns Claimed/Benchmark for every claim with a positive
// benchmark and a claimed price.
func BreachRatios(filtered []model.MergedRecord) []float64 {
	var out []float64
	for i := range filtered {
		r := &filtered[i]
		if !r.ClaimedPrice.Valid || !r.BenchmarkPrice.Valid || !r.BenchmarkPrice.Decimal.IsPositive() {
			continue
		}
		if ratio, ok := normalize.Ratio(r.ClaimedPrice.Decimal, r.BenchmarkPrice.Decimal); ok {
			out = append(out, ratio)
		}
	}
	return out
}

// BuildWaterfall is the attrition from the plan budget total to the claimed
// and paid sums of the filtered claims.
func BuildWaterfall(k model.KPI, filtered []model.MergedRecord) model.Waterfall {
	w := model.Waterfall{Budget: k.BudgetTotal}
	for i := range filtered {
		r := &filtered[i]
		if r.ClaimedPrice.Valid {
			w.Claimed = w.Claimed.Add(r.ClaimedPrice.Decimal)
		}
		if r.PaidPrice.Valid {
			w.Paid = w.Paid.Add(r.PaidPrice.Decimal)
		}
	}
	if rate, ok := normalize.Ratio(k.PaidTotal, k.BudgetTotal); ok {
		w.UtilisationRate = rate
	}
	return w
}
