// Package pipeline holds the per-source normalizers, the merge stage and
// the runner that executes them in manifest order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/normalize"
	"github.com/gyeh/hcpnorm/internal/table"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

// ErrUnknownPipeline is returned for a pipeline name with no registered
// entry point.
var ErrUnknownPipeline = errors.New("unknown pipeline")

// PipelineError wraps an error with the pipeline where it occurred.
type PipelineError struct {
	Pipeline string
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pipeline, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Env carries what every pipeline needs from the caller. It is built once
// by the entry point and handed down.
type Env struct {
	Log   zerolog.Logger
	Store *tableio.Store
}

// Func is a pipeline entry point.
type Func func(ctx context.Context, env Env, cfg *config.PipelineConfig) (*model.PipelineSummary, error)

// Transform is the pure part of a single-source pipeline.
type Transform func(raw *table.Table, f config.Filters) (*table.Table, error)

var registry = map[string]Func{
	"call":    sourcePipeline("call", NormalizeCall),
	"edetail": sourcePipeline("edetail", NormalizeEdetail),
	"events":  sourcePipeline("events", NormalizeEvents),
	"vae":     sourcePipeline("vae", NormalizeVAE),
	"merge":   runMerge,
	"hco":     runMerge,
}

// Lookup returns the entry point registered under name.
func Lookup(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPipeline, name, strings.Join(Names(), ", "))
	}
	return fn, nil
}

// Names lists every registered pipeline name.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsMerge reports whether name runs the merge stage, whose inputs are
// produced by the run itself.
func IsMerge(name string) bool {
	return name == "merge" || name == "hco"
}

// sourcePipeline wraps a Transform with the read and write around it.
func sourcePipeline(name string, transform Transform) Func {
	return func(ctx context.Context, env Env, cfg *config.PipelineConfig) (*model.PipelineSummary, error) {
		start := time.Now()

		src, err := cfg.SourcePath()
		if err != nil {
			return nil, err
		}
		dst, err := cfg.OutputPath()
		if err != nil {
			return nil, err
		}

		raw, err := env.Store.Read(ctx, src)
		if err != nil {
			return nil, err
		}
		out, err := transform(raw, cfg.Filters)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", name, err)
		}
		if err := writeOutput(ctx, env, cfg, out); err != nil {
			return nil, err
		}

		return summarize(name, src, dst, raw.Len(), out, start), nil
	}
}

func writeOutput(ctx context.Context, env Env, cfg *config.PipelineConfig, t *table.Table) error {
	dst, err := cfg.OutputPath()
	if err != nil {
		return err
	}
	if err := env.Store.Write(ctx, t, dst); err != nil {
		return err
	}
	env.Log.Info().Str("path", dst).Int("rows", t.Len()).Msg("saved output")

	if cfg.Output.Parquet != "" {
		if err := env.Store.Write(ctx, t, cfg.Output.Parquet); err != nil {
			return err
		}
		env.Log.Info().Str("path", cfg.Output.Parquet).Int("rows", t.Len()).Msg("saved parquet mirror")
	}
	return nil
}

func summarize(name, src, dst string, rowsRead int, out *table.Table, start time.Time) *model.PipelineSummary {
	byChannel := make(map[string]int64)
	for _, r := range out.Rows() {
		byChannel[r.Get(model.ColChannel).String()]++
	}
	return &model.PipelineSummary{
		Pipeline:      name,
		SourcePath:    src,
		OutputPath:    dst,
		RowsRead:      int64(rowsRead),
		RowsOut:       int64(out.Len()),
		RowsByChannel: byChannel,
		Duration:      time.Since(start),
	}
}

// finish appends YRMO, applies the retention window and projects onto the
// canonical columns. Every source normalizer ends here.
func finish(t *table.Table, months int) (*table.Table, error) {
	t, err := normalize.AddYRMO(t, model.ColActivityDate)
	if err != nil {
		return nil, err
	}
	return normalize.FilterRetention(t, months).Select(model.CanonicalColumns...)
}

// productFilter keeps rows whose col matches the configured filter under
// key. match decides equality; a falsy or absent filter keeps every row.
func productFilter(t *table.Table, want table.Value, active bool, col string, match func(got, want table.Value) bool) (*table.Table, error) {
	if !active {
		return t, nil
	}
	if err := t.Require(col); err != nil {
		return nil, err
	}
	return t.Filter(func(r table.Row) bool { return match(r.Get(col), want) }), nil
}

func typedEqual(got, want table.Value) bool { return got.Equal(want) }

func stringEqual(got, want table.Value) bool {
	return !got.IsNull() && got.String() == want.String()
}
