package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/hcpnorm/internal/exitcode"
	"github.com/gyeh/hcpnorm/internal/logging"
	"github.com/gyeh/hcpnorm/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify pipeline configs and inputs (no writes)",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	m, _, err := manifestStore()
	if err != nil {
		log.Error().Err(err).Msg("manifest load failed")
		os.Exit(exitcode.UsageError)
	}

	failed := 0
	for _, r := range pipeline.Check(m) {
		if r.Err != nil {
			failed++
			fmt.Printf("FAIL %-8s %s: %v\n", r.Name, r.Config, r.Err)
			continue
		}
		if r.Source == "" {
			fmt.Printf("ok   %-8s %s\n", r.Name, r.Config)
		} else {
			fmt.Printf("ok   %-8s %s (source %s)\n", r.Name, r.Config, r.Source)
		}
	}
	if failed > 0 {
		log.Error().Int("failed", failed).Msg("check failed")
		os.Exit(exitcode.ValidationError)
	}
	return nil
}
