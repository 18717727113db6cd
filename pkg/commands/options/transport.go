package options

import (
	"github.com/spf13/cobra"
)

// TransportOptions select where a backup is read from or written to.
type TransportOptions struct {
	File      string
	Clipboard bool
}

func AddTransportArgs(cmd *cobra.Command, o *TransportOptions) {
	cmd.Flags().StringVarP(&o.File, "file", "f", "-",
		`Backup file, "-" for stdin/stdout.`)
	cmd.Flags().BoolVar(&o.Clipboard, "clipboard", false,
		"Use the system clipboard instead of a file.")
}
