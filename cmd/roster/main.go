// Package main provides the roster command: offline validation and import of
// influencer roster files (YAML or JSON).
//
// Usage:
//
//	roster validate talent.yaml more.json
//	roster import --data-path ~/reachly talent.yaml
//
// Import opens the server's database and search index directly, so run it
// while the server is stopped. With the server up, drop files into the
// roster inbox instead.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	dataPath string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "roster",
	Short:        "Validate and import influencer rosters",
	SilenceUsage: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check roster files without writing anything",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Create or update influencer profiles from roster files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	importCmd.Flags().StringVar(&dataPath, "data-path", "", "Base path for server data (default: DATA_PATH or ~/Reachly/data)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
