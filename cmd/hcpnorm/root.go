package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gyeh/hcpnorm/internal/config"
	"github.com/gyeh/hcpnorm/internal/tableio"
)

var (
	cfg      config.Config
	settings = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "hcpnorm",
	Short: "HCP interaction record normalization",
	Long:  "Normalizes call, edetail, events and VAE interaction records into one canonical HCP activity table, and loads it into Postgres.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg.LogFormat = settings.GetString("log-format")
		cfg.DSN = settings.GetString("dsn")
		cfg.ManifestPath = settings.GetString("manifest")
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("log-format", "text", "Log format: text or json (or set HCPNORM_LOG_FORMAT)")
	pf.String("dsn", "", "Postgres connection string (or set HCPNORM_DSN)")
	pf.String("manifest", "", "Run manifest; built-in pipeline order when empty (or set HCPNORM_MANIFEST)")

	settings.SetEnvPrefix("HCPNORM")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	_ = settings.BindPFlags(pf)
}

// manifestStore loads the run manifest and a table store using its s3
// settings.
func manifestStore() (*config.Manifest, *tableio.Store, error) {
	m, err := config.LoadManifest(cfg.ManifestPath)
	if err != nil {
		return nil, nil, err
	}
	return m, tableio.NewStore(m.S3), nil
}
