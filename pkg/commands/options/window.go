package options

import (
	"github.com/spf13/cobra"
)

// WindowOptions
type WindowOptions struct {
	Window string
}

func AddWindowArgs(cmd *cobra.Command, o *WindowOptions) {
	cmd.Flags().StringVarP(&o.Window, "window", "w", "",
		`Look-ahead window, for example 2w, 10d or 1w3d. Defaults to the "upcoming.window" config key.`)
}
