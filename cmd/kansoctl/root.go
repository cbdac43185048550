package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/config"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/logger"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "kansoctl",
	Short: "Operator tool for the Kanso progress engine.",
	Long: `kansoctl talks straight to the engine's datastore: it applies migrations,
inspects the progress of a habit as the API would compute it and issues
development tokens.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Setup(logLevel, "text")
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml); environment variables still win")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "warn", "Set log level. Available: debug, info, warn, error, fatal")

	rootCmd.AddCommand(migrateCmd, tokenCmd, progressCmd, heatmapCmd, summaryCmd)
}

func readConfig() (*config.Config, error) {
	return config.Read(cfgFile)
}
