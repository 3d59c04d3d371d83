// GeoFlow CLI — инструмент командной строки для управления
// workflows, executions и triggers через HTTP API.
//
// Использование:
//
//	geoflow [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	workflows   Управление workflows
//	execute     Запуск workflow
//	executions  Управление executions
//	triggers    Управление триггерами
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fedibbm/geoflow/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "geoflow",
		Short:         "GeoFlow CLI — satellite imagery workflow tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewWorkflowCmd(clientFn, outputFn),
		cli.NewExecuteCmd(clientFn, outputFn),
		cli.NewExecutionsCmd(clientFn, outputFn),
		cli.NewTriggerCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
