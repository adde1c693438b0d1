// mkfixture writes a synthetic AT dataset archive for demos and tests.
// Usage: go run ./cmd/mkfixture --out testdata/sample.zip --participants 200 --seed 7
package main

import (
	"archive/zip"
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyeh/atexplorer/internal/model"
)

var (
	states       = []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "ACT", "NT"}
	ageBands     = []string{"0-6", "7-14", "15-24", "25-34", "35-44", "45-54", "55-64", "65+"}
	modes        = []string{"Agency", "Plan", "Self"}
	sources      = []string{"PACE", "Legacy"}
	disabilities = []string{
		"Multiple Sclerosis", "Motor Neurone Disease", "Muscular Dystrophy", "Huntington's Disease",
		"Cerebral Palsy", "Spinal Cord Injury", "Acquired Brain Injury", "Stroke", "Autism", "",
	}
	items = []string{
		"05_220312822_0103_1_2", "05_122221123_0103_1_2", "05_221812111_0103_1_2",
		"05_123603111_0103_1_2", "05_121809111_0103_1_2", "05_221803111_0103_1_2",
		"05_181806111_0103_1_2", "05_221218111_0103_1_2",
	}
)

func main() {
	out := flag.String("out", "testdata/sample.zip", "output archive")
	participants := flag.Int("participants", 200, "number of participants")
	maxClaims := flag.Int("claims", 12, "max claims per plan")
	seed := flag.Uint64("seed", 1, "random seed")
	omitOptional := flag.Bool("omit-optional", false, "leave out benchmark_history.csv and supplementary_item_list.csv")
	flag.Parse()

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	tables := generate(rng, *participants, *maxClaims)
	if *omitOptional {
		delete(tables, model.KindBenchmark.File)
		delete(tables, model.KindSuppItems.File)
	}

	if err := writeArchive(*out, tables); err != nil {
		fmt.Fprintf(os.Stderr, "write archive: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s: %d participants, %d plans, %d claims\n", *out,
		len(tables[model.KindParticipant.File])-1, len(tables[model.KindPlan.File])-1, len(tables[model.KindClaimLine.File])-1)
}

// generate returns CSV records, header first, keyed by archive entry name.
func generate(rng *rand.Rand, n, maxClaims int) map[string][][]string {
	parts := [][]string{{model.ColParticipantID, model.ColState, model.ColMMMCode, model.ColAgeBand, model.ColPrimaryDisability}}
	plans := [][]string{{model.ColParticipantID, model.ColPlanID, model.ColPlanStartDate, model.ColBudget, model.ColPlanMode}}
	claims := [][]string{{model.ColClaimID, model.ColPlanID, model.ColServiceDate, model.ColSupportItem,
		model.ColClaimedPrice, model.ColPaidPrice, model.ColBenchmarkPrice, model.ColSourceSystem}}

	bench := make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		bench[it] = decimal.NewFromInt(int64(200 + rng.IntN(4800)))
	}

	base := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	claimNo := 0
	for i := 0; i < n; i++ {
		pid := fmt.Sprintf("P%05d", i+1)
		parts = append(parts, []string{
			pid,
			pick(rng, states),
			fmt.Sprint(1 + rng.IntN(7)),
			pick(rng, ageBands),
			pick(rng, disabilities),
		})

		nPlans := 1 + rng.IntN(2)
		for p := 0; p < nPlans; p++ {
			planID := fmt.Sprintf("PL%05d_%d", i+1, p+1)
			start := base.AddDate(0, rng.IntN(12), rng.IntN(28))
			budget := decimal.NewFromInt(int64(rng.IntN(20) * 1000))
			plans = append(plans, []string{pid, planID, start.Format("2006-01-02"), budget.String(), pick(rng, modes)})

			nClaims := rng.IntN(maxClaims + 1)
			for c := 0; c < nClaims; c++ {
				claimNo++
				item := pick(rng, items)
				b := bench[item]
				// Claims cluster around the benchmark, some above it.
				claimed := b.Mul(decimal.NewFromFloat(0.7 + rng.Float64()*0.6)).Round(2)
				paid := claimed
				if rng.IntN(5) == 0 {
					paid = decimal.Zero
				}
				benchCell := b.String()
				if rng.IntN(10) == 0 {
					benchCell = ""
				}
				claims = append(claims, []string{
					fmt.Sprintf("C%07d", claimNo),
					planID,
					start.AddDate(0, 0, rng.IntN(365)).Format("2006-01-02"),
					item,
					claimed.StringFixed(2),
					paid.StringFixed(2),
					benchCell,
					pick(rng, sources),
				})
			}
		}
	}

	benchHist := [][]string{{"support_item_number", "effective_from", "benchmark_unitprice_aud"}}
	supp := [][]string{{"support_item_number", "description"}}
	for _, it := range items {
		benchHist = append(benchHist, []string{it, base.Format("2006-01-02"), bench[it].String()})
		supp = append(supp, []string{it, "Assistive technology item " + it[3:12]})
	}

	return map[string][][]string{
		model.KindParticipant.File: parts,
		model.KindPlan.File:        plans,
		model.KindClaimLine.File:   claims,
		model.KindBenchmark.File:   benchHist,
		model.KindSuppItems.File:   supp,
	}
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

func writeArchive(path string, tables map[string][][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	for _, kind := range model.AllTableKinds {
		records, ok := tables[kind.File]
		if !ok {
			continue
		}
		w, err := zw.Create(kind.File)
		if err != nil {
			f.Close()
			return err
		}
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(records); err != nil {
			f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
