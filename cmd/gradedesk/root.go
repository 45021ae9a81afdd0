package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradedesk/gradedesk/internal/config"
	"github.com/gradedesk/gradedesk/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "gradedesk",
	Short: "Gradedesk is a grading console for MCP tool servers",
	Long: `Gradedesk drives a fleet of Python MCP tool servers (essay grading,
bubble sheets, LaTeX handouts, test generation, PII scrubbing, email
delivery) over stdio, with guided multi-step workflows on top.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (YAML)")
}

// loadConfig reads the configuration named by --config, falling back to
// defaults plus GRADEDESK_* environment overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.Logging.Level))
}
