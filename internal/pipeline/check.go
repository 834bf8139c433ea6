package pipeline

import (
	"fmt"
	"os"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

// CheckResult is the preflight outcome for one manifest pipeline.
type CheckResult struct {
	Name   string
	Config string
	Source string
	Err    error
}

// Check verifies, without running anything, that every manifest pipeline
// is registered, its config loads and a source pipeline's input exists.
// Merge inputs are produced by the run and s3:// inputs are not probed.
func Check(m *config.Manifest) []CheckResult {
	results := make([]CheckResult, 0, len(m.Pipelines))
	for _, ref := range m.Pipelines {
		res := CheckResult{Name: ref.Name, Config: ref.Config}
		res.Source, res.Err = checkOne(ref)
		results = append(results, res)
	}
	return results
}

func checkOne(ref config.PipelineRef) (string, error) {
	if _, err := Lookup(ref.Name); err != nil {
		return "", err
	}
	pc, err := config.LoadPipelineConfig(ref.Config)
	if err != nil {
		return "", err
	}
	if _, err := pc.OutputPath(); err != nil {
		return "", err
	}
	if IsMerge(ref.Name) {
		for _, name := range MergeSources {
			if _, err := pc.MergeSourcePath(name); err != nil {
				return "", err
			}
		}
		return "", nil
	}
	src, err := pc.SourcePath()
	if err != nil {
		return "", err
	}
	if _, _, ok := tableio.ParseS3URI(src); ok {
		return src, nil
	}
	if _, err := os.Stat(src); err != nil {
		return src, fmt.Errorf("source not accessible: %w", err)
	}
	return src, nil
}
