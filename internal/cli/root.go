package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/sourcedit/internal/version"
)

// NewRootCmd builds the sourcedit command tree. Without a subcommand it
// runs the service.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sourcedit",
		Short: "sourcedit - edit sources and revalidate what changed",
		Long: `sourcedit loads a source with its endpoint, credentials and applications,
exposes them as one editable model, and on submit sends only the edited
fields and revalidates the applications those edits affect.`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.SetVersionTemplate(fmt.Sprintf("sourcedit %s\n", version.Get()))

	root.AddCommand(newServeCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newAggregateCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ sourcedit: %v\n", err)
		os.Exit(1)
	}
}
