package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/hcpnorm/internal/config"
)

func TestCheck_AllReady(t *testing.T) {
	m := fixtureRun(t)
	results := Check(m)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.NoError(t, r.Err, r.Name)
	}
	assert.Empty(t, results[4].Source, "merge inputs are not probed")
	assert.Equal(t, filepath.Join(filepath.Dir(m.OutputDir), "data", "call.csv"), results[0].Source)
}

func TestCheck_ReportsEachProblem(t *testing.T) {
	m := fixtureRun(t)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(m.OutputDir), "data", "vae.csv")))
	m.Pipelines = append(m.Pipelines,
		config.PipelineRef{Name: "fax", Config: "fax.json"},
		config.PipelineRef{Name: "call", Config: filepath.Join(t.TempDir(), "missing.json")},
	)

	results := Check(m)
	require.Len(t, results, 7)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[3].Err, os.ErrNotExist)
	assert.ErrorIs(t, results[5].Err, ErrUnknownPipeline)
	assert.ErrorIs(t, results[6].Err, config.ErrConfigFile)
}

func TestCheck_SkipsObjectStorageSources(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "vae.json"),
		`{"source": {"path": "s3://etl/raw/vae.parquet"}, "output": {"csv": "out/vae.csv"}}`)
	results := Check(&config.Manifest{Pipelines: []config.PipelineRef{{Name: "vae", Config: path}}})
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "s3://etl/raw/vae.parquet", results[0].Source)
}
