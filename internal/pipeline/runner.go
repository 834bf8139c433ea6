package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/model"
)

// Runner executes the pipelines of a manifest one after another.
type Runner struct {
	Env      Env
	Manifest *config.Manifest
}

// Run clears the output directory, then runs every manifest pipeline in
// order. The first failure stops the run; later pipelines never start.
func (r *Runner) Run(ctx context.Context) (*model.RunSummary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.Env.Log.With().Str("run_id", runID).Logger()

	removed, err := CleanOutputDir(r.Manifest.OutputDir, r.Manifest.LogFile)
	if err != nil {
		return nil, err
	}
	log.Info().Str("output_dir", r.Manifest.OutputDir).Int("removed", removed).Msg("starting pipeline execution")

	env := r.Env
	env.Log = log
	summary := &model.RunSummary{RunID: runID}
	for _, ref := range r.Manifest.Pipelines {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		ps, err := RunOne(ctx, env, ref.Name, ref.Config)
		if err != nil {
			return summary, err
		}
		summary.Pipelines = append(summary.Pipelines, ps)
	}
	summary.Duration = time.Since(start)

	log.Info().
		Int("pipelines", len(summary.Pipelines)).
		Str("duration", summary.Duration.String()).
		Msg("pipeline execution complete")
	return summary, nil
}

// RunOne loads the config at configPath and runs the named pipeline.
// Failures are logged with the pipeline name and error type, then
// returned as a *PipelineError.
func RunOne(ctx context.Context, env Env, name, configPath string) (*model.PipelineSummary, error) {
	log := env.Log.With().Str("pipeline", name).Logger()
	fail := func(err error) (*model.PipelineSummary, error) {
		log.Error().
			Str("error_type", errorType(err)).
			Str("message", err.Error()).
			Msg("pipeline failed")
		return nil, &PipelineError{Pipeline: name, Err: err}
	}

	fn, err := Lookup(name)
	if err != nil {
		return fail(err)
	}
	cfg, err := config.LoadPipelineConfig(configPath)
	if err != nil {
		return fail(err)
	}

	log.Info().Str("config", configPath).Msg("running pipeline")
	env.Log = log
	summary, err := fn(ctx, env, cfg)
	if err != nil {
		return fail(err)
	}

	ev := log.Info().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_out", summary.RowsOut).
		Str("duration", summary.Duration.String())
	for ch, n := range summary.RowsByChannel {
		ev = ev.Int64("channel."+ch, n)
	}
	ev.Msg("completed pipeline")
	return summary, nil
}

// CleanOutputDir deletes every regular file directly under dir except
// keep. Sub-directories are left alone and a missing dir is not an error.
func CleanOutputDir(dir, keep string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read output dir: %w", err)
	}

	var keepAbs string
	if keep != "" {
		if keepAbs, err = filepath.Abs(keep); err != nil {
			return 0, fmt.Errorf("resolve log file path: %w", err)
		}
	}
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if keepAbs != "" {
			abs, err := filepath.Abs(path)
			if err != nil {
				return removed, fmt.Errorf("resolve %s: %w", path, err)
			}
			if abs == keepAbs {
				continue
			}
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("clean output dir: %w", err)
		}
		removed++
	}
	return removed, nil
}

// errorType names the innermost error's type, e.g. "*fs.PathError".
func errorType(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
