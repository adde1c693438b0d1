package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/atexplorer/internal/aggregate"
	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/normalize"
	"github.com/gyeh/atexplorer/internal/pipeline"
)

// Config holds all runtime configuration for an atexplore run.
type Config struct {
	DSN        string
	FilePath   string
	ConfigPath string
	LogFormat  string // "text" or "json"
	LogLevel   string
	Addr       string
	OutDir     string
	FromDB     bool

	// Set from the YAML file; zero values fall back to built-in defaults.
	Mappings    map[string]normalize.Mapping
	Keywords    []string
	LeagueSize  int
	MaxBins     int
	PreviewRows int
	MaxUpload   int64
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Mappings             []normalize.Mapping `yaml:"mappings"`
	DegenerativeKeywords []string            `yaml:"degenerative_keywords"`
	LeagueSize           int                 `yaml:"league_size"`
	HistogramBins        int                 `yaml:"histogram_bins"`
	PreviewRows          int                 `yaml:"preview_rows"`
	MaxUploadMB          int64               `yaml:"max_upload_mb"`
}

// DefaultMaxUpload bounds a single HTTP upload.
const DefaultMaxUpload = 200 << 20

// LoadFromFile reads a YAML config file and merges its values into Config.
// Mapping entries extend the built-in rename map of their kind.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if err := c.mergeMappings(yc.Mappings); err != nil {
		return err
	}
	c.Keywords = yc.DegenerativeKeywords
	if yc.LeagueSize < 0 || yc.HistogramBins < 0 || yc.PreviewRows < 0 || yc.MaxUploadMB < 0 {
		return fmt.Errorf("league_size, histogram_bins, preview_rows and max_upload_mb must not be negative")
	}
	c.LeagueSize = yc.LeagueSize
	c.MaxBins = yc.HistogramBins
	c.PreviewRows = yc.PreviewRows
	c.MaxUpload = yc.MaxUploadMB << 20
	return nil
}

// mergeMappings checks that every entry names a known table kind and layers
// its renames over the defaults. Source headers are normalized the same way
// the loader normalizes them.
func (c *Config) mergeMappings(entries []normalize.Mapping) error {
	if len(entries) == 0 {
		return nil
	}
	merged := normalize.DefaultMappings()
	for _, e := range entries {
		if _, ok := model.TableKindByName(e.Kind); !ok {
			return fmt.Errorf("unknown table kind %q in config", e.Kind)
		}
		m := merged[e.Kind]
		m.Kind = e.Kind
		renames := make(map[string]string, len(m.Renames)+len(e.Renames))
		for src, canon := range m.Renames {
			renames[src] = canon
		}
		for src, canon := range e.Renames {
			if canon == "" {
				return fmt.Errorf("mapping %s: empty target for %q", e.Kind, src)
			}
			renames[normalize.Header(src)] = canon
		}
		m.Renames = renames
		if e.IdentifierFallback {
			m.IdentifierFallback = true
		}
		merged[e.Kind] = m
	}
	c.Mappings = merged
	return nil
}

// PipelineOptions returns the pipeline tunables this config carries.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Mappings: c.Mappings,
		Keywords: c.Keywords,
		Aggregate: aggregate.Options{
			LeagueSize:  c.LeagueSize,
			MaxBins:     c.MaxBins,
			PreviewRows: c.PreviewRows,
		},
	}
}

// UploadLimit returns the configured upload limit in bytes.
func (c *Config) UploadLimit() int64 {
	if c.MaxUpload > 0 {
		return c.MaxUpload
	}
	return DefaultMaxUpload
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	return nil
}

// ValidateDSN checks that a database connection string is set.
func (c *Config) ValidateDSN() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or ATX_DSN is required")
	}
	return nil
}

// ValidateWithDSN checks both file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.ValidateDSN()
}
