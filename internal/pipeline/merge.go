package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/table"
)

// MergeSources is the fixed concatenation order of the merge stage.
var MergeSources = []string{"event", "edetail", "call", "vae"}

// Merge stacks normalized tables in order. Nothing is deduplicated,
// re-sorted or re-filtered; a column missing from one input is null for
// that input's rows.
func Merge(tables ...*table.Table) *table.Table {
	return table.Concat(tables...)
}

func runMerge(ctx context.Context, env Env, cfg *config.PipelineConfig) (*model.PipelineSummary, error) {
	start := time.Now()

	paths := make([]string, len(MergeSources))
	for i, name := range MergeSources {
		p, err := cfg.MergeSourcePath(name)
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	dst, err := cfg.OutputPath()
	if err != nil {
		return nil, err
	}

	tables := make([]*table.Table, len(paths))
	rowsRead := 0
	for i, p := range paths {
		t, err := env.Store.Read(ctx, p)
		if err != nil {
			return nil, err
		}
		env.Log.Debug().Str("source", MergeSources[i]).Str("path", p).Int("rows", t.Len()).Msg("read merge input")
		tables[i] = t
		rowsRead += t.Len()
	}

	out := Merge(tables...)
	if err := writeOutput(ctx, env, cfg, out); err != nil {
		return nil, err
	}

	return summarize("merge", strings.Join(paths, ","), dst, rowsRead, out, start), nil
}
