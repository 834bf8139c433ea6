package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/exitcode"
	"github.com/gyeh/hcpnorm/internal/logging"
	"github.com/gyeh/hcpnorm/internal/pipeline"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every manifest pipeline in order",
	Long:  "Clears the output directory, then runs call, edetail, events, vae and merge (or the manifest's list) one after another. The first failure stops the run.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	m, store, err := manifestStore()
	if err != nil {
		l := logging.Setup(cfg.LogFormat)
		l.Error().Err(err).Msg("manifest load failed")
		os.Exit(exitcode.UsageError)
	}

	log, closeLog, err := logging.SetupWithFile(cfg.LogFormat, m.LogFile)
	if err != nil {
		l := logging.Setup(cfg.LogFormat)
		l.Error().Err(err).Msg("log file setup failed")
		os.Exit(exitcode.IOError)
	}
	defer closeLog()

	runner := &pipeline.Runner{
		Env:      pipeline.Env{Log: log, Store: store},
		Manifest: m,
	}
	summary, err := runner.Run(context.Background())
	if err != nil {
		var pe *pipeline.PipelineError
		if !errors.As(err, &pe) {
			log.Error().Err(err).Msg("run failed")
		}
		_ = closeLog()
		os.Exit(exitCodeFor(err))
	}

	fmt.Printf("Run complete: %d pipelines (%.1fs)\n", len(summary.Pipelines), summary.Duration.Seconds())
	for _, ps := range summary.Pipelines {
		fmt.Printf("  %-8s %8d rows -> %s\n", ps.Pipeline, ps.RowsOut, ps.OutputPath)
	}
	return nil
}

// exitCodeFor maps a pipeline failure to the process exit code.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrUnknownPipeline),
		errors.Is(err, config.ErrConfigFile),
		errors.Is(err, config.ErrMissingSourcePath),
		errors.Is(err, config.ErrMissingOutputPath),
		errors.Is(err, config.ErrMissingMergeSource),
		errors.Is(err, config.ErrInvalidMonths):
		return exitcode.UsageError
	case errors.Is(err, tableio.ErrRead):
		return exitcode.ValidationError
	case errors.Is(err, tableio.ErrWrite):
		return exitcode.IOError
	default:
		return exitcode.TransformError
	}
}
