package parquetio

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/atexplorer/internal/model"
)

// RequiredMergedColumns are the columns a merged export must carry to be
// re-read by downstream tools.
var RequiredMergedColumns = []string{
	strings.ToLower(model.ColClaimID),
	strings.ToLower(model.ColPlanID),
	strings.ToLower(model.ColPaidPrice),
}

// ValidateSchema checks that schema contains every required column.
func ValidateSchema(schema *parquet.Schema, required []string) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	var missing []string
	for _, col := range required {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Verify reopens an exported merged file, validates its schema and returns
// its row count.
func Verify(path string) (int64, error) {
	r, err := Open[model.MergedRow](path)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	if err := ValidateSchema(r.Schema(), RequiredMergedColumns); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return r.NumRows(), nil
}
