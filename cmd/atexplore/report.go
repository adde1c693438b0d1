package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gyeh/atexplorer/internal/logging"
	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/pipeline"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the full pipeline and print KPIs, utilisation and the item league",
	RunE:  runReport,
}

func init() {
	addSourceFlags(reportCmd)
	addFilterFlags(reportCmd)
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	b := loadBundle(context.Background(), log)

	rep, err := pipeline.Run(b, filters.selection(), cfg.PipelineOptions(), log)
	if err != nil {
		exitForPipeline(log, err)
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printReport(os.Stdout, rep)
	return nil
}

func printReport(out io.Writer, rep *model.Report) {
	for _, w := range rep.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	fmt.Fprintf(out, "Rows: %d merged, %d after filters\n", rep.MergedRows, rep.FilteredRows)
	if rep.NoData {
		return
	}

	k := rep.KPI
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Plans:          %d\n", k.Plans)
	fmt.Fprintf(out, "Budget total:   $%s\n", k.BudgetTotal.StringFixed(2))
	fmt.Fprintf(out, "Paid total:     $%s\n", k.PaidTotal.StringFixed(2))
	fmt.Fprintf(out, "Utilisation:    %.1f%%\n", k.UtilPct)
	fmt.Fprintf(out, "Zero draw:      %d\n", k.ZeroDraw)
	fmt.Fprintf(out, "Partial draw:   %d\n", k.PartialDraw)
	fmt.Fprintf(out, "Draw n/a:       %d\n", k.UndefinedDraw)

	w := rep.Waterfall
	fmt.Fprintf(out, "Waterfall:      budget $%s -> claimed $%s -> paid $%s\n",
		w.Budget.StringFixed(2), w.Claimed.StringFixed(2), w.Paid.StringFixed(2))

	printGroups(out, "State", rep.ByState)
	printGroups(out, "MMM", rep.ByMMM)

	if n := len(rep.Cumulative); n > 0 {
		last := rep.Cumulative[n-1]
		fmt.Fprintf(out, "\nCumulative share: %d claims dated, last at day %d\n", last.Cum, last.Day)
	}

	fmt.Fprintln(out, "\nSupport item league:")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ITEM\tCLAIMS\tPAID\tAVG CLAIMED")
	for _, l := range rep.League {
		avg := "n/a"
		if l.AvgPrice.Valid {
			avg = "$" + l.AvgPrice.Decimal.StringFixed(2)
		}
		fmt.Fprintf(tw, "  %s\t%d\t$%s\t%s\n", l.SupportItem, l.Claims, l.Paid.StringFixed(2), avg)
	}
	tw.Flush()
}

func printGroups(out io.Writer, label string, groups []model.GroupUtil) {
	fmt.Fprintf(out, "\nUtilisation by %s:\n", label)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(tw, "  %s\t%d plans\t$%s / $%s\t%.1f%%\n",
			g.Key, g.Plans, g.Paid.StringFixed(2), g.Budget.StringFixed(2), g.UtilPct)
	}
	tw.Flush()
}
