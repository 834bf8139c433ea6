package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/hcpnorm/internal/sql"
)

// Finalize marks the batch loaded with its row counts and, when replace
// is set, deletes every other batch in the same transaction. ANALYZE runs
// afterwards. It returns the number of batches pruned.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, batchID uuid.UUID, sr *StageResult, replace bool) (int64, error) {
	var pruned int64
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, embedsql.FinalizeBatch,
			batchID, sr.RowsRead, sr.RowsCopied, sr.RowsRejected,
		); err != nil {
			return fmt.Errorf("mark batch loaded: %w", err)
		}
		if !replace {
			return nil
		}
		tag, err := tx.Exec(ctx, embedsql.PruneOlderBatches, batchID)
		if err != nil {
			return fmt.Errorf("prune older batches: %w", err)
		}
		pruned = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	if replace {
		log.Info().Int64("pruned", pruned).Msg("older batches pruned")
	}

	if _, err := pool.Exec(ctx, embedsql.AnalyzeActivity); err != nil {
		return 0, fmt.Errorf("analyze activity: %w", err)
	}
	log.Info().Msg("ANALYZE complete")

	return pruned, nil
}
