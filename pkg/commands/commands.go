package commands

import (
	"context"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/store"
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "deadlines",
		Short: base.Wrap80("Plan backwards from a final deadline: templates, sub-deadlines and the triggers that gate them."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addProject(topLevel)
	addSubDeadline(topLevel)
	addSubtask(topLevel)
	addTrigger(topLevel)
	addTemplate(topLevel)
	addUpcoming(topLevel)
	addWatch(topLevel)
	addExport(topLevel)
	addImport(topLevel)
	addInfo(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// loadService opens the configured store.
func loadService() (*app.Service, store.Config, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	p, err := store.Load(cfg)
	if err != nil {
		return nil, nil, err
	}
	return &app.Service{Persistence: p}, cfg, nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
