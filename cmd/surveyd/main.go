package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/surveyd/internal/config"
	"github.com/kailas-cloud/surveyd/internal/version"
)

var (
	flagEnv        string
	flagConfigPath string
)

var rootCmd = &cobra.Command{
	Use:           "surveyd",
	Short:         "Survey processing service",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", config.GetEnv(), "environment: local, dev, docker, prod")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path (overrides --env lookup)")

	rootCmd.AddCommand(serveCmd, checkCmd, templatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config selected by --config or --env.
func loadConfig() (config.Config, error) {
	if flagConfigPath != "" {
		return config.LoadFile(flagConfigPath) //nolint:wrapcheck // already descriptive
	}
	return config.Load(flagEnv) //nolint:wrapcheck // already descriptive
}
