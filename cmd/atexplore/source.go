package main

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/atexplorer/internal/dataset"
	"github.com/gyeh/atexplorer/internal/db"
	"github.com/gyeh/atexplorer/internal/exitcode"
	"github.com/gyeh/atexplorer/internal/filter"
	"github.com/gyeh/atexplorer/internal/normalize"
	"github.com/gyeh/atexplorer/internal/pipeline"
)

// datasetRef selects an imported dataset for --from-db.
var datasetRef string

// filterFlags holds the selection flags shared by report and export.
type filterFlags struct {
	source, state, mmm, age, mode, item []string
	breachesOnly, degenerativeOnly      bool
}

var filters filterFlags

func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to a .zip archive or a single .csv table")
	f.BoolVar(&cfg.FromDB, "from-db", false, "Read the dataset from Postgres instead of --file")
	f.StringVar(&datasetRef, "dataset", "", "Dataset id or sha256 prefix for --from-db (default newest)")
}

func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&filters.source, "source", nil, "Source_System values to keep")
	f.StringSliceVar(&filters.state, "state", nil, "State values to keep")
	f.StringSliceVar(&filters.mmm, "mmm", nil, "MMM_Code values to keep")
	f.StringSliceVar(&filters.age, "age-band", nil, "Age_Band values to keep")
	f.StringSliceVar(&filters.mode, "plan-mode", nil, "Plan_Management_Mode values to keep")
	f.StringSliceVar(&filters.item, "item", nil, "Support_Item_Number values to keep")
	f.BoolVar(&filters.breachesOnly, "breaches-only", false, "Keep only claims above a positive benchmark")
	f.BoolVar(&filters.degenerativeOnly, "degenerative-only", false, "Keep only participants with a degenerative condition")
}

func (ff filterFlags) selection() filter.Selection {
	return filter.Selection{
		Fields: map[filter.Field][]string{
			filter.FieldSource:      ff.source,
			filter.FieldState:       ff.state,
			filter.FieldMMM:         ff.mmm,
			filter.FieldAgeBand:     ff.age,
			filter.FieldPlanMode:    ff.mode,
			filter.FieldSupportItem: ff.item,
		},
		BreachesOnly:     ff.breachesOnly,
		DegenerativeOnly: ff.degenerativeOnly,
	}
}

// loadBundle reads the dataset from --file or, with --from-db, from
// Postgres. Failures exit with the matching code.
func loadBundle(ctx context.Context, log zerolog.Logger) *dataset.Bundle {
	if cfg.FromDB {
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

		b, err := db.LoadBundle(ctx, pool, datasetRef)
		if err != nil {
			log.Error().Err(err).Str("dataset", datasetRef).Msg("load dataset from database failed")
			os.Exit(exitcode.ValidationError)
		}
		return b
	}

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	b, err := dataset.LoadFile(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Str("file", cfg.FilePath).Msg("load dataset failed")
		os.Exit(exitcode.ValidationError)
	}
	return b
}

// exitForPipeline logs a pipeline failure and exits with its code.
func exitForPipeline(log zerolog.Logger, err error) {
	var (
		pe      *pipeline.PipelineError
		missing *pipeline.MissingRequiredTableError
		noID    *normalize.MissingIdentifierError
	)
	switch {
	case errors.As(err, &missing):
		log.Error().Strs("missing", missing.Missing).Msg("upload a complete dataset")
		os.Exit(exitcode.IncompleteUpload)
	case errors.As(err, &noID):
		log.Error().Err(noID).Msg("participant identifier missing")
		os.Exit(exitcode.ValidationError)
	case errors.As(err, &pe):
		log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("pipeline failed")
	default:
		log.Error().Err(err).Msg("pipeline failed")
	}
	os.Exit(exitcode.PipelineError)
}
