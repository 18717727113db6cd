package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/commands/options"
	"tableflip.dev/deadlines/pkg/runner/templates"
)

func addTemplate(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates", "t"},
		Short:   "Manage reusable schedules of offsets relative to a final deadline.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addTemplateList(cmd)
	addTemplateShow(cmd)
	addTemplateImport(cmd)
	addTemplateDelete(cmd)

	topLevel.AddCommand(cmd)
}

func addTemplateList(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all templates.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := templates.List{
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

func addTemplateShow(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	asYAML := false

	cmd := &cobra.Command{
		Use:   "show <template>",
		Short: "Show a template's schedule.",
		Example: `
deadlines template show "Monthly video"
deadlines template show "Monthly video" --yaml > video.yaml
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: templateArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := templates.Show{
				Service: svc,
				Ref:     args[0],
				YAML:    asYAML,
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the template as importable YAML.")
	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addTemplateImport(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	io := &options.IDOptions{}
	file := "-"

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import templates from YAML.",
		Long: `Import one or more templates from a YAML stream.

  name: Monthly video
  triggers:
    - key: footage
      name: Footage received
      offset: 3w-before
  subDeadlines:
    - title: Rough cut
      offset: 2w-before
      trigger: footage
    - title: Publish
      offset: 0d-after`,
		Example: `
deadlines template import -f video.yaml
cat templates.yaml | deadlines template import
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := templates.Import{
				Service: svc,
				Path:    file,
				In:      cmd.InOrStdin(),
				ShowID:  io.ShowID,
				JSON:    oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", `YAML file, "-" for stdin.`)
	options.AddOutputArg(cmd, oo)
	options.AddShowIDArgs(cmd, io)

	parent.AddCommand(cmd)
}

func addTemplateDelete(parent *cobra.Command) {
	oo := &options.OutputOptions{}
	yes := false

	cmd := &cobra.Command{
		Use:     "delete <template>",
		Aliases: []string{"rm"},
		Short:   "Delete a template. Projects created from it keep their dates.",
		Args:    cobra.ExactArgs(1),

		ValidArgsFunction: templateArgCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return oo.HandleError(errors.New("refusing to delete without --yes"))
			}
			svc, _, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := templates.Delete{
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
