package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/hcpnorm/internal/model"
	"github.com/gyeh/hcpnorm/internal/normalize"
	embedsql "github.com/gyeh/hcpnorm/internal/sql"
	"github.com/gyeh/hcpnorm/internal/table"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

// PreflightResult holds everything resolved before any row is copied.
type PreflightResult struct {
	// FilePath is the path passed to Preflight, stored as-is.
	FilePath string
	// FileSHA256 is the hex-encoded SHA-256 of the file.
	FileSHA256 string
	// LoadBatchID identifies this load. When AlreadyLoaded is set it is the
	// earlier batch instead.
	LoadBatchID uuid.UUID
	// Table is the canonical table read from the file.
	Table *table.Table
	// AlreadyLoaded is true when a batch with the same hash is loaded and
	// force is off.
	AlreadyLoaded bool
}

// Preflight hashes and reads the file, checks the canonical columns, and
// registers a pending load batch.
func Preflight(ctx context.Context, pool *pgxpool.Pool, store *tableio.Store, log zerolog.Logger, filePath string, force bool) (*PreflightResult, error) {
	start := time.Now()

	sha, err := normalize.FileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}

	if !force {
		var existing uuid.UUID
		err := pool.QueryRow(ctx, embedsql.LookupLoadedBatch, sha).Scan(&existing)
		if err == nil {
			return &PreflightResult{
				FilePath:      filePath,
				FileSHA256:    sha,
				LoadBatchID:   existing,
				AlreadyLoaded: true,
			}, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lookup loaded batch: %w", err)
		}
	}

	t, err := store.Read(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight read: %w", err)
	}
	if err := t.Require(model.CanonicalColumns...); err != nil {
		return nil, fmt.Errorf("preflight validate: %w", err)
	}

	batchID := uuid.New()
	if _, err := pool.Exec(ctx, embedsql.RegisterLoadBatch, batchID, filepath.Base(filePath), sha); err != nil {
		return nil, fmt.Errorf("register load batch: %w", err)
	}

	log.Info().
		Str("file", filepath.Base(filePath)).
		Str("sha256", sha).
		Int("rows", t.Len()).
		Str("load_batch_id", batchID.String()).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	return &PreflightResult{
		FilePath:    filePath,
		FileSHA256:  sha,
		LoadBatchID: batchID,
		Table:       t,
	}, nil
}
