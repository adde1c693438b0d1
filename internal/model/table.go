package model

// Table is a parsed flat file: ordered header names and string cells.
// An empty cell is a null. Column order is the order of the source header,
// which makes header scans deterministic.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// NewTable returns an empty table with the given header.
func NewTable(name string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of column col, or -1 if absent.
func (t *Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries column col.
func (t *Table) Has(col string) bool {
	return t.Index(col) >= 0
}

// Cell returns the value at row, column index idx. ok is false for a null
// cell, a negative index, or a short row.
func (t *Table) Cell(row, idx int) (string, bool) {
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return "", false
	}
	r := t.Rows[row]
	if idx >= len(r) || r[idx] == "" {
		return "", false
	}
	return r[idx], true
}

// Value is Cell addressed by column name.
func (t *Table) Value(row int, col string) (string, bool) {
	return t.Cell(row, t.Index(col))
}

// Ptr returns the cell as a *string, nil when null.
func (t *Table) Ptr(row, idx int) *string {
	v, ok := t.Cell(row, idx)
	if !ok {
		return nil
	}
	return &v
}

// AddColumn appends a column populated from values. values must have one
// entry per row.
func (t *Table) AddColumn(name string, values []string) {
	t.Columns = append(t.Columns, name)
	idx := len(t.Columns) - 1
	for i := range t.Rows {
		row := t.Rows[i]
		if len(row) > idx {
			row = row[:idx]
		}
		for len(row) < idx {
			row = append(row, "")
		}
		t.Rows[i] = append(row, values[i])
	}
}

// Column returns every value of column col in row order. Missing columns
// yield a slice of nulls.
func (t *Table) Column(col string) []string {
	idx := t.Index(col)
	out := make([]string, len(t.Rows))
	for i := range t.Rows {
		out[i], _ = t.Cell(i, idx)
	}
	return out
}

// Clone returns a deep copy so callers can add columns without touching a
// cached table.
func (t *Table) Clone() *Table {
	c := NewTable(t.Name, t.Columns)
	c.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		c.Rows[i] = append([]string(nil), r...)
	}
	return c
}
