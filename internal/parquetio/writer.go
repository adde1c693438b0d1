package parquetio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/atexplorer/internal/model"
)

// Output file names written by Export.
const (
	MergedFile = "merged_claims.parquet"
	DrawFile   = "plan_draw.parquet"
)

const batchSize = 1024

// ExportResult lists what Export wrote.
type ExportResult struct {
	MergedPath string
	DrawPath   string
	MergedRows int64
	DrawRows   int64
}

// Export writes the merged claim lines and plan draw rows into dir,
// creating it if needed.
func Export(dir string, records []model.MergedRecord, draws []model.PlanDraw) (*ExportResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	res := &ExportResult{
		MergedPath: filepath.Join(dir, MergedFile),
		DrawPath:   filepath.Join(dir, DrawFile),
	}

	merged := make([]model.MergedRow, len(records))
	for i := range records {
		merged[i] = records[i].ToRow()
	}
	n, err := WriteFile(res.MergedPath, merged)
	if err != nil {
		return nil, err
	}
	res.MergedRows = n

	rows := make([]model.PlanDrawRow, len(draws))
	for i := range draws {
		rows[i] = draws[i].ToRow()
	}
	if n, err = WriteFile(res.DrawPath, rows); err != nil {
		return nil, err
	}
	res.DrawRows = n
	return res, nil
}

// WriteFile writes rows to a new Snappy-compressed Parquet file at path.
func WriteFile[T any](path string, rows []T) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}

	w := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Snappy))
	var written int64
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		n, err := w.Write(rows[start:end])
		written += int64(n)
		if err != nil {
			f.Close()
			return written, fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return written, fmt.Errorf("close parquet writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close parquet file: %w", err)
	}
	return written, nil
}
