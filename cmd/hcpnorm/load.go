package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/hcpnorm/internal/db"
	"github.com/gyeh/hcpnorm/internal/exitcode"
	"github.com/gyeh/hcpnorm/internal/ingest"
	"github.com/gyeh/hcpnorm/internal/logging"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a canonical activity file into the database",
	RunE:  runLoad,
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to a canonical table file (required)")
	f.BoolVar(&cfg.Replace, "replace", false, "Delete earlier load batches after this one succeeds")
	f.BoolVar(&cfg.Force, "force", false, "Re-load even if the file SHA was already loaded")
	_ = loadCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	_, store, err := manifestStore()
	if err != nil {
		log.Error().Err(err).Msg("manifest load failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := ingest.Run(ctx, pool, store, log, &cfg)
	if err != nil {
		var le *ingest.LoadError
		if errors.As(err, &le) {
			log.Error().Err(le.Err).Str("phase", le.Phase).Msg("load failed")
			switch le.Phase {
			case "register":
				os.Exit(exitcode.ValidationError)
			case "copy":
				os.Exit(exitcode.CopyError)
			default:
				os.Exit(exitcode.TransformError)
			}
		}
		log.Error().Err(err).Msg("load failed")
		os.Exit(exitcode.TransformError)
	}

	if summary.AlreadyLoaded {
		fmt.Printf("Already loaded as batch %s; nothing to do\n", summary.LoadBatchID)
		return nil
	}
	fmt.Printf("Load complete: batch %s, %d rows copied, %d rejected, %d batches pruned (%.1fs)\n",
		summary.LoadBatchID, summary.RowsCopied, summary.RowsRejected, summary.BatchesPruned, summary.Duration.Seconds())
	return nil
}
