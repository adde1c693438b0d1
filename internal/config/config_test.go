package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gyeh/atexplorer/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := writeConfig(t, `
mappings:
  - kind: plan
    renames:
      " Budget_AUD ": Capital_AT_Budget_Total_AUD
degenerative_keywords:
  - parkinson
league_size: 10
histogram_bins: 20
max_upload_mb: 5
`)

	var c Config
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	plan := c.Mappings[model.KindPlan.Name]
	if plan.Renames["budget_aud"] != model.ColBudget {
		t.Errorf("override not normalized/applied: %v", plan.Renames)
	}
	if plan.Renames["plan_id"] != model.ColPlanID {
		t.Error("defaults should survive an override")
	}
	if !c.Mappings[model.KindParticipant.Name].IdentifierFallback {
		t.Error("untouched kinds keep their defaults")
	}
	if len(c.Keywords) != 1 || c.Keywords[0] != "parkinson" {
		t.Errorf("Keywords = %v", c.Keywords)
	}

	opts := c.PipelineOptions()
	if opts.Aggregate.LeagueSize != 10 || opts.Aggregate.MaxBins != 20 || opts.Aggregate.PreviewRows != 0 {
		t.Errorf("aggregate options = %+v", opts.Aggregate)
	}
	if c.UploadLimit() != 5<<20 {
		t.Errorf("UploadLimit = %d", c.UploadLimit())
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown kind", "mappings:\n  - kind: invoices\n    renames: {a: b}\n"},
		{"empty target", "mappings:\n  - kind: plan\n    renames: {budget: \"\"}\n"},
		{"negative size", "league_size: -1\n"},
		{"bad yaml", "mappings: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			if err := c.LoadFromFile(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFromFile_EmptyDefaults(t *testing.T) {
	var c Config
	if err := c.LoadFromFile(writeConfig(t, "mappings: []\n")); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Mappings != nil {
		t.Error("no entries should leave the built-in mappings in effect")
	}
	if c.UploadLimit() != DefaultMaxUpload {
		t.Errorf("UploadLimit = %d, want default", c.UploadLimit())
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	var c Config
	err := c.LoadFromFile("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, "")

	c := Config{FilePath: path}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if err := c.ValidateWithDSN(); err == nil {
		t.Error("expected DSN error")
	}
	c.DSN = "postgres://localhost/at"
	if err := c.ValidateWithDSN(); err != nil {
		t.Errorf("ValidateWithDSN: %v", err)
	}

	if err := (&Config{}).Validate(); err == nil {
		t.Error("expected --file error")
	}
	if err := (&Config{FilePath: "/nonexistent.zip"}).Validate(); err == nil {
		t.Error("expected inaccessible file error")
	}
}
