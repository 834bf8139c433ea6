package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/hcpnorm/internal/exitcode"
	"github.com/gyeh/hcpnorm/internal/logging"
	"github.com/gyeh/hcpnorm/internal/pipeline"
)

var execConfig string

var execCmd = &cobra.Command{
	Use:   "exec <pipeline>",
	Short: "Run a single pipeline without clearing outputs",
	Args:  cobra.ExactArgs(1),
	RunE:  runExec,
}

func init() {
	execCmd.Flags().StringVar(&execConfig, "config", "", "Pipeline config file (required)")
	_ = execCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	_, store, err := manifestStore()
	if err != nil {
		log.Error().Err(err).Msg("manifest load failed")
		os.Exit(exitcode.UsageError)
	}

	env := pipeline.Env{Log: log, Store: store}
	summary, err := pipeline.RunOne(context.Background(), env, args[0], execConfig)
	if err != nil {
		os.Exit(exitCodeFor(err))
	}

	fmt.Printf("%s complete: %d rows read, %d rows written to %s (%.1fs)\n",
		summary.Pipeline, summary.RowsRead, summary.RowsOut, summary.OutputPath, summary.Duration.Seconds())
	return nil
}
