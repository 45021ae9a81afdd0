package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradedesk/gradedesk/internal/presentation/tui"
	"github.com/gradedesk/gradedesk/internal/workflows"
	"github.com/gradedesk/gradedesk/pkg/clients"
)

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List the available guided workflows",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		registry := workflows.DefaultRegistry(clients.NewSet(cfg))

		rows := make([][]string, 0)
		for _, info := range registry.List() {
			rows = append(rows, []string{
				info.Name,
				fmt.Sprintf("%d", len(info.Steps)),
				info.Description,
			})
		}
		fmt.Println(tui.RenderTable([]string{"Workflow", "Steps", "Description"}, rows,
			[]tui.Alignment{tui.AlignLeft, tui.AlignRight, tui.AlignLeft}))
	},
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
}
