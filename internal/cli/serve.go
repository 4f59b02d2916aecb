package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/sourcedit/internal/app"
	"github.com/MrSnakeDoc/sourcedit/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long:  `Run the HTTP service. Configuration comes from SOURCEDIT_* environment variables and an optional .env file.`,
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}
