package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/hcpnorm/internal/table"
)

// DefaultMonthsToRetain is the retention window when filters.months_to_retain
// is not set.
const DefaultMonthsToRetain = 7

// Configuration errors. All are fatal for the run.
var (
	ErrMissingSourcePath  = errors.New("source.path is required")
	ErrMissingOutputPath  = errors.New("output.csv is required")
	ErrMissingMergeSource = errors.New("sources.<name>.path is required")
	ErrInvalidMonths      = errors.New("filters.months_to_retain must be an integer >= 1")
	ErrConfigFile         = errors.New("load pipeline config")
)

// PathConfig is a {path: ...} block.
type PathConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig names where a pipeline writes its table.
type OutputConfig struct {
	CSV string `yaml:"csv"`
	// Parquet optionally mirrors the output as a columnar file.
	Parquet string `yaml:"parquet"`
}

// PipelineConfig is the on-disk configuration of one pipeline. JSON config
// files parse as YAML, so both formats are accepted.
type PipelineConfig struct {
	Source  PathConfig            `yaml:"source"`
	Sources map[string]PathConfig `yaml:"sources"`
	Filters Filters               `yaml:"filters"`
	Output  OutputConfig          `yaml:"output"`
}

// Filters holds free-form filter options with their decoded types intact.
type Filters map[string]any

// LoadPipelineConfig reads a pipeline config file.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigFile, err)
	}
	var pc PipelineConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrConfigFile, path, err)
	}
	return &pc, nil
}

// SourcePath returns source.path or ErrMissingSourcePath.
func (c *PipelineConfig) SourcePath() (string, error) {
	if c.Source.Path == "" {
		return "", ErrMissingSourcePath
	}
	return c.Source.Path, nil
}

// OutputPath returns output.csv or ErrMissingOutputPath.
func (c *PipelineConfig) OutputPath() (string, error) {
	if c.Output.CSV == "" {
		return "", ErrMissingOutputPath
	}
	return c.Output.CSV, nil
}

// MergeSourcePath returns sources.<name>.path.
func (c *PipelineConfig) MergeSourcePath(name string) (string, error) {
	src, ok := c.Sources[name]
	if !ok || src.Path == "" {
		return "", fmt.Errorf("%w: sources.%s.path", ErrMissingMergeSource, name)
	}
	return src.Path, nil
}

// MonthsToRetain returns filters.months_to_retain, defaulting to 7.
func (f Filters) MonthsToRetain() (int, error) {
	raw, ok := f["months_to_retain"]
	if !ok || raw == nil {
		return DefaultMonthsToRetain, nil
	}
	var n int
	switch v := raw.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: got %v", ErrInvalidMonths, v)
		}
		n = int(v)
	default:
		return 0, fmt.Errorf("%w: got %T", ErrInvalidMonths, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidMonths, n)
	}
	return n, nil
}

// Product returns the typed filter value under key and whether it
// enables filtering. Absent, null, "", 0 and false all disable it.
func (f Filters) Product(key string) (table.Value, bool) {
	v := table.ValueOf(f[key])
	return v, v.Truthy()
}

// ProductOr is Product with a default used only when key is absent.
// An explicitly empty value still disables filtering.
func (f Filters) ProductOr(key string, def any) (table.Value, bool) {
	if _, ok := f[key]; !ok {
		v := table.ValueOf(def)
		return v, v.Truthy()
	}
	return f.Product(key)
}
