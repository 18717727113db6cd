package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show where data is stored and how much of it there is.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return err
			}
			s := info.Info{
				Config:  cfg,
				Service: svc,
			}
			return s.Do(ctxOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}
