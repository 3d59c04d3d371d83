package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewExecuteCmd создаёт команду запуска workflow.
func NewExecuteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var version int
	var inputs []string
	var triggeredBy string
	var wait bool

	cmd := &cobra.Command{
		Use:   "execute WORKFLOW_ID",
		Short: "Start a workflow execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := StartExecutionRequest{
				Version:     version,
				TriggeredBy: triggeredBy,
			}

			if len(inputs) > 0 {
				req.Input = make(map[string]any)
				for _, kv := range inputs {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid input format %q, expected KEY=VALUE", kv)
					}
					req.Input[parts[0]] = parts[1]
				}
			}

			exec, err := client.StartExecution(args[0], req, wait)
			if err != nil {
				return err
			}

			out.Successf("Execution %s: %s", strings.ToLower(exec.Status), exec.ID)
			out.Print(
				[]string{"ID", "WORKFLOW_ID", "VERSION", "STATUS", "ERROR"},
				[][]string{{exec.ID, exec.WorkflowID, strconv.Itoa(exec.Version), exec.Status, exec.Error}},
				exec,
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&version, "version", 0, "Workflow version (current if not specified)")
	cmd.Flags().StringSliceVar(&inputs, "input", nil, "Input values as KEY=VALUE (repeatable)")
	cmd.Flags().StringVar(&triggeredBy, "triggered-by", "cli", "Who triggers the execution")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the execution to finish")

	return cmd
}

// NewExecutionsCmd создаёт группу команд для управления executions.
func NewExecutionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executions",
		Short: "Manage executions",
	}

	cmd.AddCommand(
		newExecutionsListCmd(clientFn, outputFn),
		newExecutionsShowCmd(clientFn, outputFn),
		newExecutionsLogsCmd(clientFn, outputFn),
		newExecutionsTerminateCmd(clientFn, outputFn),
		newExecutionsPauseCmd(clientFn, outputFn),
		newExecutionsResumeCmd(clientFn, outputFn),
		newExecutionsRestartCmd(clientFn, outputFn),
	)

	return cmd
}

func newExecutionsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var workflowID string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			executions, err := client.ListExecutions(ListExecutionsOpts{
				WorkflowID: workflowID,
				Status:     status,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "WORKFLOW_ID", "VERSION", "STATUS", "TRIGGERED_BY", "CREATED"}
			rows := make([][]string, len(executions))
			for i, e := range executions {
				rows[i] = []string{e.ID, e.WorkflowID, strconv.Itoa(e.Version), e.Status, e.TriggeredBy, e.CreatedAt}
			}

			out.Print(headers, rows, executions)
			return nil
		},
	}

	cmd.Flags().StringVar(&workflowID, "workflow-id", "", "Filter by workflow ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, COMPLETED, FAILED, CANCELLED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newExecutionsShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show execution details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exec, err := client.GetExecution(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "WORKFLOW_ID", "VERSION", "STATUS", "ERROR", "STARTED", "COMPLETED"},
				[][]string{{exec.ID, exec.WorkflowID, strconv.Itoa(exec.Version), exec.Status, exec.Error, exec.StartedAt, exec.CompletedAt}},
				exec,
			)
			return nil
		},
	}
}

func newExecutionsLogsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "logs ID",
		Short: "Show execution log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exec, err := client.GetExecution(args[0])
			if err != nil {
				return err
			}

			headers := []string{"TIMESTAMP", "NODE", "LEVEL", "MESSAGE"}
			rows := make([][]string, len(exec.Logs))
			for i, l := range exec.Logs {
				rows[i] = []string{l.Timestamp, l.NodeID, l.Level, l.Message}
			}

			out.Print(headers, rows, exec.Logs)
			return nil
		},
	}
}

func newExecutionsTerminateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "terminate ID",
		Short: "Terminate a running execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.TerminateExecution(args[0], reason); err != nil {
				return err
			}

			out.Successf("Termination requested: %s", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Termination reason")

	return cmd
}

func newExecutionsPauseCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "pause ID",
		Short: "Pause a running execution between nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.PauseExecution(args[0]); err != nil {
				return err
			}

			out.Successf("Execution paused: %s", args[0])
			return nil
		},
	}
}

func newExecutionsResumeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "resume ID",
		Short: "Resume a paused execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.ResumeExecution(args[0]); err != nil {
				return err
			}

			out.Successf("Execution resumed: %s", args[0])
			return nil
		},
	}
}

func newExecutionsRestartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var triggeredBy string

	cmd := &cobra.Command{
		Use:   "restart ID",
		Short: "Restart a finished execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exec, err := client.RestartExecution(args[0], triggeredBy)
			if err != nil {
				return err
			}

			out.Successf("Execution restarted: %s", exec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&triggeredBy, "triggered-by", "cli", "Who triggers the restart")

	return cmd
}
