package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/atexplorer/internal/dataset"
	"github.com/gyeh/atexplorer/internal/model"
	embedsql "github.com/gyeh/atexplorer/internal/sql"
)

// ErrDatasetNotFound is returned when no imported dataset matches a reference.
var ErrDatasetNotFound = errors.New("dataset not found")

// AmbiguousRefError is returned when a sha256 prefix matches more than one dataset.
type AmbiguousRefError struct {
	Ref string
}

func (e *AmbiguousRefError) Error() string {
	return fmt.Sprintf("dataset reference %q matches more than one dataset", e.Ref)
}

// ImportResult summarizes one Import call.
type ImportResult struct {
	DatasetID uuid.UUID
	// AlreadyLoaded is true when identical content was imported before and
	// force was off; nothing was written.
	AlreadyLoaded bool
	Rows          map[string]int64
	Duration      time.Duration
}

// DatasetInfo describes one imported dataset.
type DatasetInfo struct {
	ID         uuid.UUID `json:"dataset_id"`
	Name       string    `json:"name"`
	SHA256     string    `json:"sha256"`
	SizeBytes  int64     `json:"size_bytes"`
	ImportedAt time.Time `json:"imported_at"`
	Tables     []string  `json:"tables"`
}

// Import stores every table of b in one transaction, streaming rows with
// COPY. Content already present is skipped unless force is set, in which
// case the old copy is replaced.
func Import(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, b *dataset.Bundle, force bool) (*ImportResult, error) {
	start := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var existing uuid.UUID
	err = tx.QueryRow(ctx, embedsql.FindDataset, b.SHA256).Scan(&existing)
	switch {
	case err == nil && !force:
		log.Info().Str("dataset_id", existing.String()).Str("sha256", b.SHA256).
			Msg("dataset already imported, skipping (use --force to re-import)")
		return &ImportResult{DatasetID: existing, AlreadyLoaded: true, Duration: time.Since(start)}, nil
	case err == nil:
		if _, err := tx.Exec(ctx, embedsql.DeleteDataset, existing); err != nil {
			return nil, fmt.Errorf("replace dataset %s: %w", existing, err)
		}
		log.Info().Str("dataset_id", existing.String()).Msg("replacing previously imported dataset")
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("find dataset: %w", err)
	}

	res := &ImportResult{DatasetID: uuid.New(), Rows: make(map[string]int64, len(b.Tables))}
	if _, err := tx.Exec(ctx, embedsql.RegisterDataset, res.DatasetID, b.Name, b.SHA256, int64(b.Size)); err != nil {
		return nil, fmt.Errorf("register dataset: %w", err)
	}

	names := make([]string, 0, len(b.Tables))
	for name := range b.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t := b.Tables[name]
		cols := t.Columns
		if cols == nil {
			cols = []string{}
		}
		if _, err := tx.Exec(ctx, embedsql.RegisterTable, res.DatasetID, name, cols, t.Len()); err != nil {
			return nil, fmt.Errorf("register table %s: %w", name, err)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"at", "dataset_rows"}, rowColumns, NewTableSource(res.DatasetID, t))
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", name, err)
		}
		res.Rows[name] = n
		log.Info().Str("table", name).Int64("rows", n).Msg("table copied")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	res.Duration = time.Since(start)
	log.Info().
		Str("dataset_id", res.DatasetID.String()).
		Int("tables", len(names)).
		Dur("duration", res.Duration).
		Msg("dataset imported")
	return res, nil
}

// LoadBundle rebuilds the bundle of an imported dataset. ref is a dataset
// id, a sha256 prefix, or empty for the newest import.
func LoadBundle(ctx context.Context, pool *pgxpool.Pool, ref string) (*dataset.Bundle, error) {
	rows, err := pool.Query(ctx, embedsql.ResolveDataset, ref)
	if err != nil {
		return nil, fmt.Errorf("resolve dataset: %w", err)
	}
	type match struct {
		id   uuid.UUID
		name string
		sha  string
		size int64
	}
	var matches []match
	for rows.Next() {
		var m match
		if err := rows.Scan(&m.id, &m.name, &m.sha, &m.size); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		matches = append(matches, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve dataset: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrDatasetNotFound
	}
	if len(matches) > 1 && ref != "" {
		return nil, &AmbiguousRefError{Ref: ref}
	}
	m := matches[0]

	tables, err := loadTables(ctx, pool, m.id)
	if err != nil {
		return nil, err
	}
	return dataset.NewBundle(m.name, m.sha, int(m.size), tables), nil
}

func loadTables(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (map[string]*model.Table, error) {
	rows, err := pool.Query(ctx, embedsql.SelectTables, id)
	if err != nil {
		return nil, fmt.Errorf("select tables: %w", err)
	}
	tables := make(map[string]*model.Table)
	for rows.Next() {
		var (
			name  string
			cols  []string
			count int
		)
		if err := rows.Scan(&name, &cols, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan table: %w", err)
		}
		t := model.NewTable(name, cols)
		t.Rows = make([][]string, 0, count)
		tables[name] = t
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select tables: %w", err)
	}

	for name, t := range tables {
		cells, err := pool.Query(ctx, embedsql.SelectRows, id, name)
		if err != nil {
			return nil, fmt.Errorf("select rows of %s: %w", name, err)
		}
		for cells.Next() {
			var row []string
			if err := cells.Scan(&row); err != nil {
				cells.Close()
				return nil, fmt.Errorf("scan row of %s: %w", name, err)
			}
			t.Rows = append(t.Rows, row)
		}
		cells.Close()
		if err := cells.Err(); err != nil {
			return nil, fmt.Errorf("select rows of %s: %w", name, err)
		}
	}
	return tables, nil
}

// List returns every imported dataset, newest first.
func List(ctx context.Context, pool *pgxpool.Pool) ([]DatasetInfo, error) {
	rows, err := pool.Query(ctx, embedsql.ListDatasets)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var out []DatasetInfo
	for rows.Next() {
		var d DatasetInfo
		if err := rows.Scan(&d.ID, &d.Name, &d.SHA256, &d.SizeBytes, &d.ImportedAt, &d.Tables); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Delete removes a dataset and all of its rows.
func Delete(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) error {
	tag, err := pool.Exec(ctx, embedsql.DeleteDataset, id)
	if err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDatasetNotFound
	}
	return nil
}
