package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/atexplorer/internal/model"
)

// rowColumns is the COPY column order of at.dataset_rows.
var rowColumns = []string{"dataset_id", "file_name", "row_no", "cells"}

// TableSource implements pgx.CopyFromSource over the rows of one parsed
// table. Short rows are padded to the header width so every stored row
// has the same arity.
type TableSource struct {
	datasetID uuid.UUID
	table     *model.Table
	width     int
	pos       int
}

// NewTableSource creates a CopyFromSource for t tagged with datasetID.
func NewTableSource(datasetID uuid.UUID, t *model.Table) *TableSource {
	return &TableSource{datasetID: datasetID, table: t, width: len(t.Columns), pos: -1}
}

// Next advances to the next row.
func (s *TableSource) Next() bool {
	s.pos++
	return s.pos < len(s.table.Rows)
}

// Values returns the current row's values in COPY column order.
func (s *TableSource) Values() ([]any, error) {
	row := s.table.Rows[s.pos]
	cells := make([]string, s.width)
	copy(cells, row)
	return []any{s.datasetID, s.table.Name, s.pos, cells}, nil
}

// Err returns any error encountered during iteration.
func (s *TableSource) Err() error {
	return nil
}

// Compile-time check that TableSource satisfies the interface.
var _ pgx.CopyFromSource = (*TableSource)(nil)
