package commands

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	r := mcp.Runner{}
	transport := string(mcp.TransportStdio)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve projects, templates and triggers over the Model Context Protocol.",
		Long: `Launch an MCP server that lets assistants list projects and templates,
create projects, move final deadlines, flip triggers and read the upcoming report.

stdio is what desktop assistants spawn. http serves the streamable HTTP
transport on --addr.`,
		Example: `
deadlines mcp
deadlines mcp --transport http --addr 127.0.0.1:0
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r.Persistence = svc.Persistence
			r.Log = log.New(os.Stderr, "deadlines: ", 0)
			r.Version = version
			r.Transport = mcp.Transport(transport)
			r.Listening = func(url string) {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", url)
			}
			return r.Do(ctx)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", transport, "Transport to use: stdio or http.")
	cmd.Flags().StringVar(&r.Addr, "addr", "127.0.0.1:8080", "Listen address for the http transport (port 0 picks one).")
	cmd.Flags().StringVar(&r.Path, "path", "/mcp", "Endpoint path for the http transport.")

	topLevel.AddCommand(cmd)
}
