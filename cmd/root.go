package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/config"
)

// cfg is loaded once per invocation before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "autoscore",
	Short: "Multi-criteria vehicle scoring",
	Long: `Scores vehicles from an ADAC-style table against a weighted feature table
and ranks them by total score and price per score point.

Configuration is read from ./config.yaml and AUTOSCORE_* environment
variables (AUTOSCORE_STORE_DRIVER=sqlite, AUTOSCORE_LOG_LEVEL=debug).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = zap.L().Sync()
	},
}

// setup loads the configuration and installs the global logger.
func setup(_ *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "load config")
	}
	if err := config.InitLogger(c.Log); err != nil {
		return eris.Wrap(err, "init logger")
	}
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
