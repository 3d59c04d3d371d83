package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewTriggerCmd создаёт группу команд для управления триггерами.
func NewTriggerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triggers",
		Short: "Manage workflow triggers",
	}

	cmd.AddCommand(
		newTriggerListCmd(clientFn, outputFn),
		newTriggerCreateCmd(clientFn, outputFn),
		newTriggerEnableCmd(clientFn, outputFn, true),
		newTriggerEnableCmd(clientFn, outputFn, false),
		newTriggerDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func newTriggerListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list WORKFLOW_ID",
		Short: "List triggers of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			triggers, err := client.ListTriggers(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "TYPE", "SCHEDULE", "EVENT_KEY", "ENABLED", "NEXT_DUE", "FIRED"}
			rows := make([][]string, len(triggers))
			for i, t := range triggers {
				rows[i] = []string{
					t.ID, t.Name, t.Type, t.CronExpr, t.EventKey,
					strconv.FormatBool(t.Enabled), t.NextDueAt,
					strconv.FormatInt(t.ExecutionCount, 10),
				}
			}

			out.Print(headers, rows, triggers)
			return nil
		},
	}
}

func newTriggerCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var triggerType string
	var cronExpr string
	var eventKey string
	var inputs []string
	var disabled bool

	cmd := &cobra.Command{
		Use:   "create WORKFLOW_ID",
		Short: "Create a trigger for a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateTriggerRequest{
				Name:     name,
				Type:     strings.ToUpper(triggerType),
				CronExpr: cronExpr,
				EventKey: eventKey,
				Enabled:  !disabled,
			}

			if len(inputs) > 0 {
				req.DefaultInput = make(map[string]any)
				for _, kv := range inputs {
					parts := strings.SplitN(kv, "=", 2)
					if len(parts) != 2 {
						return fmt.Errorf("invalid input format %q, expected KEY=VALUE", kv)
					}
					req.DefaultInput[parts[0]] = parts[1]
				}
			}

			trigger, err := client.CreateTrigger(args[0], req)
			if err != nil {
				return err
			}

			out.Successf("Trigger created: %s", trigger.ID)
			out.Print(
				[]string{"ID", "NAME", "TYPE", "SCHEDULE", "EVENT_KEY", "ENABLED", "NEXT_DUE"},
				[][]string{{trigger.ID, trigger.Name, trigger.Type, trigger.CronExpr, trigger.EventKey, strconv.FormatBool(trigger.Enabled), trigger.NextDueAt}},
				trigger,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Trigger name")
	cmd.Flags().StringVar(&triggerType, "type", "", "Trigger type (SCHEDULED, EVENT, WEBHOOK, MANUAL)")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression for SCHEDULED triggers")
	cmd.Flags().StringVar(&eventKey, "event-key", "", "Routing key for EVENT triggers")
	cmd.Flags().StringSliceVar(&inputs, "input", nil, "Default input values as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the trigger disabled")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newTriggerEnableCmd(clientFn func() *Client, outputFn func() *Output, enable bool) *cobra.Command {
	use, short, done := "enable ID", "Enable a trigger", "Trigger enabled"
	if !enable {
		use, short, done = "disable ID", "Disable a trigger", "Trigger disabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			trigger, err := client.SetTriggerEnabled(args[0], enable)
			if err != nil {
				return err
			}

			out.Successf("%s: %s", done, trigger.ID)
			return nil
		},
	}
}

func newTriggerDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteTrigger(args[0]); err != nil {
				return err
			}

			out.Successf("Trigger deleted: %s", args[0])
			return nil
		},
	}
}
