package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/commands/options"
	"tableflip.dev/deadlines/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	wo := &options.WindowOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the upcoming report on screen, refreshing it whenever the store changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			window := wo.Window
			if window == "" {
				window = cfg.UpcomingWindow()
			}
			s := watch.Watch{
				Service: svc,
				Window:  window,
				Out:     cmd.OutOrStdout(),
			}
			return s.Do(ctx)
		},
	}

	options.AddWindowArgs(cmd, wo)

	topLevel.AddCommand(cmd)
}
