package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gyeh/atexplorer/internal/db"
	"github.com/gyeh/atexplorer/internal/exitcode"
	"github.com/gyeh/atexplorer/internal/logging"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets stored in Postgres",
	RunE:  runDatasets,
}

var datasetsRmCmd = &cobra.Command{
	Use:   "rm <dataset-id>",
	Short: "Delete a stored dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetsRm,
}

func init() {
	datasetsCmd.AddCommand(datasetsRmCmd)
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.ValidateDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	list, err := db.List(ctx, pool)
	if err != nil {
		log.Error().Err(err).Msg("list datasets failed")
		os.Exit(exitcode.DBConnError)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSHA256\tIMPORTED\tTABLES")
	for _, d := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Name, d.SHA256[:12], d.ImportedAt.Format("2006-01-02 15:04"), strings.Join(d.Tables, ","))
	}
	return tw.Flush()
}

func runDatasetsRm(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid dataset id: %w", err)
	}
	if err := cfg.ValidateDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if err := db.Delete(ctx, pool, id); err != nil {
		log.Error().Err(err).Str("dataset_id", id.String()).Msg("delete failed")
		os.Exit(exitcode.ValidationError)
	}
	fmt.Printf("Deleted dataset %s\n", id)
	return nil
}
