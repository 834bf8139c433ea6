package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the process-wide settings of an hcpnorm invocation.
type Config struct {
	LogFormat    string // "text" or "json"
	ManifestPath string
	DSN          string
	FilePath     string
	// Replace deletes earlier load batches once a load succeeds.
	Replace bool
	// Force reloads a file whose hash was already loaded.
	Force bool
}

// PipelineRef names one pipeline and its config file.
type PipelineRef struct {
	Name   string `yaml:"name"`
	Config string `yaml:"config"`
}

// S3Config holds object-storage settings for s3:// table paths.
type S3Config struct {
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// Manifest describes one run: where outputs live and which pipelines run,
// in order.
type Manifest struct {
	OutputDir string        `yaml:"output_dir"`
	LogFile   string        `yaml:"log_file"`
	S3        S3Config      `yaml:"s3"`
	Pipelines []PipelineRef `yaml:"pipelines"`
}

// DefaultPipelines is the run order used when a manifest lists none.
var DefaultPipelines = []PipelineRef{
	{Name: "call", Config: "config/call.json"},
	{Name: "edetail", Config: "config/edetail.json"},
	{Name: "events", Config: "config/events.json"},
	{Name: "vae", Config: "config/vae.json"},
	{Name: "merge", Config: "config/hco_promotion.json"},
}

// DefaultManifest returns the manifest used without a manifest file.
func DefaultManifest() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

// LoadManifest reads a run manifest. An empty path yields DefaultManifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return DefaultManifest(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.applyDefaults()
	return &m, m.Validate()
}

func (m *Manifest) applyDefaults() {
	if m.OutputDir == "" {
		m.OutputDir = "outputs"
	}
	if m.LogFile == "" {
		m.LogFile = filepath.Join(m.OutputDir, "pipeline.log")
	}
	if len(m.Pipelines) == 0 {
		m.Pipelines = append([]PipelineRef(nil), DefaultPipelines...)
	}
}

// Validate checks that every pipeline entry is complete.
func (m *Manifest) Validate() error {
	for i, p := range m.Pipelines {
		if p.Name == "" {
			return fmt.Errorf("pipelines[%d]: name is required", i)
		}
		if p.Config == "" {
			return fmt.Errorf("pipelines[%d] (%s): config is required", i, p.Name)
		}
	}
	return nil
}

// ValidateFile checks that --file names an accessible file.
func (c *Config) ValidateFile() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	return nil
}

// ValidateWithDSN checks both file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.ValidateFile(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or HCPNORM_DSN is required")
	}
	return nil
}
