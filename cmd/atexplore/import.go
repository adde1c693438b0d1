package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/atexplorer/internal/dataset"
	"github.com/gyeh/atexplorer/internal/db"
	"github.com/gyeh/atexplorer/internal/exitcode"
	"github.com/gyeh/atexplorer/internal/logging"
	"github.com/gyeh/atexplorer/internal/pipeline"
)

var importForce bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Store an upload in Postgres for later --from-db runs",
	RunE:  runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to a .zip archive (required)")
	f.BoolVar(&importForce, "force", false, "Re-import even if the same content is already stored")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	b, err := dataset.LoadFile(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("load dataset failed")
		os.Exit(exitcode.ValidationError)
	}
	if _, err := pipeline.Preflight(b); err != nil {
		exitForPipeline(log, err)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	res, err := db.Import(ctx, pool, log, b, importForce)
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		os.Exit(exitcode.ImportError)
	}
	if res.AlreadyLoaded {
		fmt.Printf("Already imported as %s\n", res.DatasetID)
		return nil
	}

	var rows int64
	for _, n := range res.Rows {
		rows += n
	}
	fmt.Printf("Import complete: dataset %s, %d tables, %d rows (%.1fs)\n",
		res.DatasetID, len(res.Rows), rows, res.Duration.Seconds())
	return nil
}
