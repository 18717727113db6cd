package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/commands/options"
	"tableflip.dev/deadlines/pkg/runner/upcoming"
)

func addUpcoming(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	wo := &options.WindowOptions{}

	cmd := &cobra.Command{
		Use:     "upcoming",
		Aliases: []string{"next", "u"},
		Short:   "List open sub-deadlines due within a window, overdue ones included.",
		Example: `
deadlines upcoming
deadlines upcoming --window 1w3d
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return oo.HandleError(err)
			}
			window := wo.Window
			if window == "" {
				window = cfg.UpcomingWindow()
			}
			s := upcoming.Upcoming{
				Service: svc,
				Window:  window,
				JSON:    oo.JSON,
			}
			return oo.HandleError(s.Do(ctxOf(cmd)))
		},
	}

	options.AddWindowArgs(cmd, wo)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
