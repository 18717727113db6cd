package commands

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(deadlines completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(deadlines completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

// projectCompletions offers project ids, annotated with titles.
func projectCompletions(toComplete string) []string {
	svc, _, err := loadService()
	if err != nil {
		return nil
	}
	ps, err := svc.Projects(context.Background())
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		if strings.HasPrefix(p.ID, toComplete) {
			out = append(out, p.ID+"\t"+p.Title)
		}
	}
	return out
}

// templateCompletions offers template ids, annotated with names.
func templateCompletions(toComplete string) []string {
	svc, _, err := loadService()
	if err != nil {
		return nil
	}
	ts, err := svc.Templates(context.Background())
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		if strings.HasPrefix(t.ID, toComplete) {
			out = append(out, t.ID+"\t"+t.Name)
		}
	}
	return out
}

func projectArgCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return projectCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
}

func templateArgCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return templateCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
}
