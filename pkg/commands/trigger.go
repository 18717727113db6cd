package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/commands/options"
	"tableflip.dev/deadlines/pkg/runner/projects"
)

func addTrigger(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "trigger",
		Aliases: []string{"triggers"},
		Short:   "Manage the triggers that gate sub-deadlines.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addTriggerAdd(cmd)
	addTriggerSet(cmd, "activate", "Mark a trigger satisfied, unblocking its sub-deadlines.", true)
	addTriggerSet(cmd, "deactivate", "Mark a trigger unsatisfied again.", false)
	addTriggerDelete(cmd)

	topLevel.AddCommand(cmd)
}

func addTriggerAdd(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "add <project> <name>",
		Short: "Add a trigger to a project.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.AddTrigger{
				Service: svc,
				Project: args[0],
				Name:    strings.Join(args[1:], " "),
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addTriggerSet(parent *cobra.Command, use, short string, active bool) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   use + " <project> <trigger>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.SetTrigger{
				Service: svc,
				Project: args[0],
				Trigger: args[1],
				Active:  active,
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addTriggerDelete(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "delete <project> <trigger>",
		Aliases: []string{"rm"},
		Short:   "Remove a trigger; the sub-deadlines it gated become ungated.",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.RemoveTrigger{
				Service: svc,
				Project: args[0],
				Trigger: args[1],
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}
