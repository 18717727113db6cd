package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/commands/options"
	"tableflip.dev/deadlines/pkg/runner/projects"
)

func addSubDeadline(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "subdeadline",
		Aliases: []string{"sub", "s"},
		Short:   "Manage the sub-deadlines of a project.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addSubDeadlineAdd(cmd)
	addSubDeadlineComplete(cmd)

	topLevel.AddCommand(cmd)
}

func addSubDeadlineAdd(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	on := &options.DateOptions{}
	trigger := ""

	cmd := &cobra.Command{
		Use:   "add <project> <title>",
		Short: "Add a manual sub-deadline to a project.",
		Long: `Add a manual sub-deadline to a project.

Manual sub-deadlines keep their date when the final deadline moves.`,
		Example: `
deadlines subdeadline add launch "Press kit" --on 2025-03-20
deadlines subdeadline add launch "Ship it" --on 3/28 --trigger "Legal sign-off"
`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := on.GetDate()
			if err != nil {
				return oo.HandleError(err)
			}
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.AddSubDeadline{
				Service: svc,
				Project: args[0],
				Title:   strings.Join(args[1:], " "),
				Date:    date,
				Trigger: trigger,
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	options.AddDateArgs(cmd, on, "on", "Sub-deadline date.")
	_ = cmd.MarkFlagRequired("on")
	cmd.Flags().StringVar(&trigger, "trigger", "", "Trigger of the same project that gates this sub-deadline.")
	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addSubDeadlineComplete(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	undo := false

	cmd := &cobra.Command{
		Use:     "complete <project> <sub-deadline>",
		Aliases: []string{"done"},
		Short:   "Mark a sub-deadline completed.",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.CompleteSubDeadline{
				Service:     svc,
				Project:     args[0],
				SubDeadline: args[1],
				Undo:        undo,
				ShowID:      io.ShowID,
				JSON:        oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the sub-deadline open again.")
	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}
