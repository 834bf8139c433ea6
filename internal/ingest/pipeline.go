// Package ingest loads a canonical activity table into the Postgres
// warehouse as one load batch.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

// LoadError wraps an error with the phase where it occurred.
type LoadError struct {
	Phase string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Run executes the load: preflight → stage → finalize. A failure after
// the batch is registered marks it failed and removes its rows.
func Run(ctx context.Context, pool *pgxpool.Pool, store *tableio.Store, log zerolog.Logger, cfg *config.Config) (*model.LoadSummary, error) {
	totalStart := time.Now()

	log.Info().Str("file", cfg.FilePath).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, store, log, cfg.FilePath, cfg.Force)
	if err != nil {
		return nil, &LoadError{Phase: "register", Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Str("load_batch_id", pf.LoadBatchID.String()).
			Str("sha256", pf.FileSHA256).
			Msg("file already loaded, skipping (use --force to reload)")
		return &model.LoadSummary{
			FilePath:      pf.FilePath,
			FileSHA256:    pf.FileSHA256,
			LoadBatchID:   pf.LoadBatchID.String(),
			AlreadyLoaded: true,
			Duration:      time.Since(totalStart),
		}, nil
	}

	fail := func(phase string, err error) (*model.LoadSummary, error) {
		if cerr := Cleanup(context.WithoutCancel(ctx), pool, log, pf.LoadBatchID); cerr != nil {
			log.Warn().Err(cerr).Msg("batch cleanup failed")
		}
		return nil, &LoadError{Phase: phase, Err: err}
	}

	log.Info().Msg("starting copy")
	stageResult, err := Stage(ctx, pool, log, pf)
	if err != nil {
		return fail("copy", err)
	}

	log.Info().Msg("finalizing")
	pruned, err := Finalize(ctx, pool, log, pf.LoadBatchID, stageResult, cfg.Replace)
	if err != nil {
		return fail("finalize", err)
	}

	summary := &model.LoadSummary{
		FilePath:      pf.FilePath,
		FileSHA256:    pf.FileSHA256,
		LoadBatchID:   pf.LoadBatchID.String(),
		RowsRead:      stageResult.RowsRead,
		RowsCopied:    stageResult.RowsCopied,
		RowsRejected:  stageResult.RowsRejected,
		BatchesPruned: pruned,
		Duration:      time.Since(totalStart),
	}

	log.Info().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_copied", summary.RowsCopied).
		Int64("rows_rejected", summary.RowsRejected).
		Int64("batches_pruned", summary.BatchesPruned).
		Str("total_duration", summary.Duration.String()).
		Msg("load complete")

	return summary, nil
}
