package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewWorkflowCmd создаёт группу команд для управления workflows.
func NewWorkflowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Manage workflows",
	}

	cmd.AddCommand(
		newWorkflowListCmd(clientFn, outputFn),
		newWorkflowCreateCmd(clientFn, outputFn),
		newWorkflowShowCmd(clientFn, outputFn),
		newWorkflowVersionsCmd(clientFn, outputFn),
		newWorkflowDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkflowListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			workflows, err := client.ListWorkflows()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "PROJECT", "VERSION", "CREATED"}
			rows := make([][]string, len(workflows))
			for i, wf := range workflows {
				rows[i] = []string{wf.ID, wf.Name, wf.ProjectID, strconv.Itoa(wf.CurrentVersion), wf.CreatedAt}
			}

			out.Print(headers, rows, workflows)
			return nil
		},
	}
}

// workflowGraphFile — формат файла с графом для workflow create.
type workflowGraphFile struct {
	Nodes json.RawMessage `json:"nodes"`
	Edges json.RawMessage `json:"edges,omitempty"`
}

func newWorkflowCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var description, projectID, graphPath string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a workflow from a graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := os.ReadFile(graphPath)
			if err != nil {
				return fmt.Errorf("read graph file: %w", err)
			}

			var graph workflowGraphFile
			if err := json.Unmarshal(data, &graph); err != nil {
				return fmt.Errorf("parse graph file: %w", err)
			}

			wf, err := client.CreateWorkflow(CreateWorkflowRequest{
				Name:        args[0],
				Description: description,
				ProjectID:   projectID,
				Nodes:       graph.Nodes,
				Edges:       graph.Edges,
			})
			if err != nil {
				return err
			}

			out.Successf("Workflow created: %s", wf.ID)
			out.Print(
				[]string{"ID", "NAME", "PROJECT", "VERSION"},
				[][]string{{wf.ID, wf.Name, wf.ProjectID, strconv.Itoa(wf.CurrentVersion)}},
				wf,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Workflow description")
	cmd.Flags().StringVar(&projectID, "project-id", "", "Platform project the workflow belongs to")
	cmd.Flags().StringVar(&graphPath, "file", "", "JSON file with nodes and edges (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newWorkflowShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show workflow details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			wf, err := client.GetWorkflow(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "DESCRIPTION", "PROJECT", "VERSION", "CREATED"},
				[][]string{{wf.ID, wf.Name, wf.Description, wf.ProjectID, strconv.Itoa(wf.CurrentVersion), wf.CreatedAt}},
				wf,
			)
			return nil
		},
	}
}

func newWorkflowVersionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "versions ID",
		Short: "List workflow versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			versions, err := client.ListVersions(args[0])
			if err != nil {
				return err
			}

			headers := []string{"VERSION", "CHANGELOG", "CREATED"}
			rows := make([][]string, len(versions))
			for i, v := range versions {
				rows[i] = []string{strconv.Itoa(v.Version), v.Changelog, v.CreatedAt}
			}

			out.Print(headers, rows, versions)
			return nil
		},
	}
}

func newWorkflowDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteWorkflow(args[0]); err != nil {
				return err
			}

			out.Successf("Workflow deleted: %s", args[0])
			return nil
		},
	}
}
