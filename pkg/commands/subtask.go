package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/commands/options"
	"tableflip.dev/deadlines/pkg/runner/projects"
)

func addSubtask(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage the checklist inside a sub-deadline.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addSubtaskAdd(cmd)
	addSubtaskComplete(cmd)

	topLevel.AddCommand(cmd)
}

func addSubtaskAdd(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "add <project> <sub-deadline> <title>",
		Short: "Add a subtask.",
		Example: `
deadlines subtask add launch "Press kit" "Write the blurb"
`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.AddSubtask{
				Service:     svc,
				Project:     args[0],
				SubDeadline: args[1],
				Title:       strings.Join(args[2:], " "),
				ShowID:      io.ShowID,
				JSON:        oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addSubtaskComplete(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	undo := false

	cmd := &cobra.Command{
		Use:     "complete <project> <sub-deadline> <subtask>",
		Aliases: []string{"done"},
		Short:   "Check off a subtask.",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.CompleteSubtask{
				Service:     svc,
				Project:     args[0],
				SubDeadline: args[1],
				Subtask:     args[2],
				Undo:        undo,
				ShowID:      io.ShowID,
				JSON:        oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Uncheck the subtask.")
	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}
