package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/commands/options"
	"tableflip.dev/deadlines/pkg/runner/backup"
)

func addExport(topLevel *cobra.Command) {
	to := &options.TransportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of every project, template and trigger.",
		Example: `
deadlines export > backup.json
deadlines export -f backup.json
deadlines export --clipboard
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			s := backup.Export{
				Service: svc,
				Path:    to.File,
				Out:     cmd.OutOrStdout(),
			}
			if to.Clipboard {
				s.Clipboard = backup.SystemClipboard
			}
			return s.Do(ctxOf(cmd))
		},
	}

	options.AddTransportArgs(cmd, to)

	topLevel.AddCommand(cmd)
}

func addImport(topLevel *cobra.Command) {
	to := &options.TransportOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace all data with a JSON backup.",
		Long: `Replace all data with a JSON backup.

Backups written before triggers were stored separately are upgraded on the
way in: triggers are rebuilt from each project's template. References that
can not be resolved are dropped and reported on stderr. A backup that fails
to parse leaves the current data untouched.`,
		Example: `
deadlines import -f backup.json
deadlines import --clipboard
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			s := backup.Import{
				Service: svc,
				Path:    to.File,
				In:      cmd.InOrStdin(),
			}
			if to.Clipboard {
				s.Clipboard = backup.SystemClipboard
			}
			return s.Do(ctxOf(cmd))
		},
	}

	options.AddTransportArgs(cmd, to)

	topLevel.AddCommand(cmd)
}
