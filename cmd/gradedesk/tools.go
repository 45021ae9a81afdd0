package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradedesk/gradedesk/internal/presentation/tui"
	"github.com/gradedesk/gradedesk/pkg/mcpclient"
)

var toolsCmd = &cobra.Command{
	Use:   "tools <service>",
	Short: "List the tools a configured MCP server advertises",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		service := args[0]
		cli := mcpclient.NewClient(service, cfg.ServerPath(service),
			mcpclient.WithLogger(newLogger(cfg)),
			mcpclient.WithLauncher(mcpclient.StdioLauncher{
				Runner:      cfg.Runner.Command,
				Interpreter: cfg.Runner.Interpreter,
			}),
		)
		defer cli.Manager().Reset()

		tools, err := cli.ListTools(cmd.Context())
		if err != nil {
			fmt.Println(tui.Failure(err.Error()))
			os.Exit(1)
		}

		rows := make([][]string, 0, len(tools))
		for _, tool := range tools {
			rows = append(rows, []string{tool.Name, tool.Description})
		}
		fmt.Println(tui.RenderTable([]string{"Tool", "Description"}, rows, nil))
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
