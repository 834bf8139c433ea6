package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/hcpnorm/internal/exitcode"
	"github.com/gyeh/hcpnorm/internal/logging"
	"github.com/gyeh/hcpnorm/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run inspection and stats (no writes)",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&cfg.FilePath, "file", "", "Path to a table file (required)")
	_ = planCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.ValidateFile(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	_, store, err := manifestStore()
	if err != nil {
		log.Error().Err(err).Msg("manifest load failed")
		os.Exit(exitcode.UsageError)
	}

	report, err := plan.Inspect(context.Background(), store, cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("inspection failed")
		os.Exit(exitcode.ValidationError)
	}
	report.Print(os.Stdout)
	return nil
}
