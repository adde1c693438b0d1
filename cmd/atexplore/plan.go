package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/atexplorer/internal/exitcode"
	"github.com/gyeh/atexplorer/internal/logging"
	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run: list the tables an upload carries and check the required ones",
	RunE:  runPlan,
}

func init() {
	addSourceFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	b := loadBundle(context.Background(), log)
	sum := b.Summary()

	names := make([]string, 0, len(sum.Tables))
	for name := range sum.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("=== atexplore plan ===")
	fmt.Printf("Upload:     %s\n", sum.Name)
	fmt.Printf("SHA-256:    %s\n", sum.SHA256)
	fmt.Printf("Size:       %d bytes\n", sum.SizeBytes)
	fmt.Println()
	fmt.Println("Tables found:")
	for _, name := range names {
		t := b.Tables[name]
		fmt.Printf("  %-30s %8d rows  %d columns\n", name, sum.Tables[name], len(t.Columns))
	}
	if len(sum.Missing) > 0 {
		fmt.Println("Tables missing:")
		for _, name := range sum.Missing {
			req := ""
			if k, ok := model.TableKindByFile(name); ok && k.Required {
				req = " (required)"
			}
			fmt.Printf("  %s%s\n", name, req)
		}
	}
	fmt.Println()

	if _, err := pipeline.Preflight(b); err != nil {
		fmt.Printf("Required tables: %v\n", err)
		os.Exit(exitcode.IncompleteUpload)
	}
	fmt.Printf("Required tables: OK (%s)\n", strings.Join(model.RequiredFiles(), ", "))
	return nil
}
