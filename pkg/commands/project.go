package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/commands/options"
	"tableflip.dev/deadlines/pkg/runner/projects"
)

func addProject(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Manage projects and their final deadlines.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addProjectList(cmd)
	addProjectShow(cmd)
	addProjectNew(cmd)
	addProjectDeadline(cmd)
	addProjectDelete(cmd)

	topLevel.AddCommand(cmd)
}

func addProjectList(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all projects.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.List{
				Service: svc,
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

func addProjectShow(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	calendar := false

	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project with its sub-deadlines and triggers.",
		Example: `
deadlines project show launch
deadlines project show 3f2a --calendar
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: projectArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.Show{
				Service:  svc,
				Ref:      args[0],
				Calendar: calendar,
				ShowID:   io.ShowID,
				JSON:     oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	cmd.Flags().BoolVarP(&calendar, "calendar", "c", false, "Also print a calendar up to the final deadline.")
	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addProjectNew(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	due := &options.DateOptions{}
	tmpl := ""

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a project, optionally scheduled from a template.",
		Example: `
deadlines project new "Spring launch" --due 2025-03-31
deadlines project new "April video" --due 4/30 --template "Monthly video"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := due.GetDate()
			if err != nil {
				return oo.HandleError(err)
			}
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.Create{
				Service:  svc,
				Title:    strings.Join(args, " "),
				Template: tmpl,
				Due:      date,
				ShowID:   io.ShowID,
				JSON:     oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	options.AddDateArgs(cmd, due, "due", "Final deadline.")
	_ = cmd.MarkFlagRequired("due")
	cmd.Flags().StringVarP(&tmpl, "template", "t", "", "Template id or name to schedule from.")
	_ = cmd.RegisterFlagCompletionFunc("template", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return templateCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
	})
	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addProjectDeadline(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	due := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "deadline <project>",
		Short: "Move a project's final deadline and reschedule template-derived dates.",
		Long: `Move a project's final deadline.

Sub-deadlines and triggers that came from the project's template are
recalculated from the new date. Manually added sub-deadlines keep their dates.`,
		Example: `
deadlines project deadline launch --due 2025-04-15
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: projectArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := due.GetDate()
			if err != nil {
				return oo.HandleError(err)
			}
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.Deadline{
				Service: svc,
				Ref:     args[0],
				Due:     date,
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	options.AddDateArgs(cmd, due, "due", "New final deadline.")
	_ = cmd.MarkFlagRequired("due")
	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addProjectDelete(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	yes := false

	cmd := &cobra.Command{
		Use:               "delete <project>",
		Aliases:           []string{"rm"},
		Short:             "Delete a project and everything it owns.",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: projectArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return oo.HandleError(errors.New("refusing to delete without --yes"))
			}
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := projects.Delete{
				Service: svc,
				Ref:     args[0],
				JSON:    oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion.")
	options.AddOutputArg(cmd, oo)

	parent.AddCommand(cmd)
}
