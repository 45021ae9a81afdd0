package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradedesk/gradedesk/internal/presentation/tui"
	"github.com/gradedesk/gradedesk/pkg/mcpclient"
)

var callRenderField string

var callCmd = &cobra.Command{
	Use:   "call <service> <tool> [json-args]",
	Short: "Invoke a single tool on a configured MCP server",
	Long: `Invokes one tool and prints the decoded result as JSON. Arguments are
passed as a JSON object, e.g.:

  gradedesk call bubble list_bubble_tests '{"limit": 5}'

Markdown-bearing fields (student reports, essay previews) can be rendered
for the terminal instead of dumped as JSON:

  gradedesk call regrade generate_student_report '{"essay_id": 1}' --render report`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		toolArgs := map[string]any{}
		if len(args) == 3 {
			if err := json.Unmarshal([]byte(args[2]), &toolArgs); err != nil {
				fmt.Printf("Invalid JSON arguments: %v\n", err)
				os.Exit(1)
			}
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

		result, err := cli.CallTool(cmd.Context(), args[1], toolArgs)
		if err != nil {
			fmt.Println(tui.Failure(err.Error()))
			os.Exit(1)
		}

		if callRenderField != "" {
			markdown := result.Str(callRenderField)
			if markdown == "" {
				fmt.Println(tui.Failure(fmt.Sprintf("result has no text field %q", callRenderField)))
				os.Exit(1)
			}
			render := tui.NewRenderer()
			out, err := render(markdown)
			if err != nil {
				fmt.Printf("Error rendering markdown: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(out)
			return
		}

		pretty, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Printf("Error rendering result: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(pretty))
	},
}

func init() {
	callCmd.Flags().StringVar(&callRenderField, "render", "",
		"render the named string field of the result as markdown")
	rootCmd.AddCommand(callCmd)
}
