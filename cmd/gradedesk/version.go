package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gradedesk/gradedesk/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gradedesk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gradedesk version %s\n", strings.TrimSpace(version.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
