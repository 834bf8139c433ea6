package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/hcpnorm/internal/db"
	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/normalize"
	embedsql "github.com/gyeh/hcpnorm/internal/sql"
)

const copyBufferSize = 1024

// StageResult holds metrics from the copy phase.
type StageResult struct {
	RowsRead     int64
	RowsCopied   int64
	RowsRejected int64
	Duration     time.Duration
}

// Stage converts every row of the preflight table into an ActivityRecord
// and COPY-loads them into hcp.activity via a channel-backed
// CopyFromSource. Rows that fail conversion are logged and skipped.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, pf *PreflightResult) (*StageResult, error) {
	start := time.Now()

	if err := UpdateStatus(ctx, pool, pf.LoadBatchID, "copying"); err != nil {
		return nil, fmt.Errorf("stage status: %w", err)
	}

	ch := make(chan *model.ActivityRecord, copyBufferSize)
	errCh := make(chan error, 1)

	var rowsRead, rowsRejected int64

	// Producer goroutine: table rows → records → channel
	go func() {
		defer close(ch)
		for i, r := range pf.Table.Rows() {
			rowNum := int64(i + 1)
			rowsRead++

			rec, convErr := normalize.ToActivityRecord(r, pf.LoadBatchID, rowNum)
			if convErr != nil {
				rowsRejected++
				log.Warn().Err(convErr).Int64("row", rowNum).Msg("row rejected")
				continue
			}

			select {
			case ch <- rec:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- nil
	}()

	source := db.NewChannelSource(ch)
	rowsCopied, err := pool.CopyFrom(ctx,
		pgx.Identifier{"hcp", "activity"},
		model.ActivityColumns(),
		source,
	)
	if err != nil {
		// Drain so the producer can finish.
		for range ch {
		}
	}

	prodErr := <-errCh
	if prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_read", rowsRead).
		Int64("rows_copied", rowsCopied).
		Int64("rows_rejected", rowsRejected).
		Str("duration", dur.String()).
		Float64("rows_per_sec", float64(rowsCopied)/dur.Seconds()).
		Msg("copy complete")

	return &StageResult{
		RowsRead:     rowsRead,
		RowsCopied:   rowsCopied,
		RowsRejected: rowsRejected,
		Duration:     dur,
	}, nil
}

// UpdateStatus sets the status of a load batch.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, batchID uuid.UUID, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateBatchStatus, batchID, status)
	return err
}
