package commands

import (
	"github.com/spf13/cobra"

	"github.com/horilla-opensource/horilla-installer/cmd/horilla-installer/handlers"
)

// Status returns the command that reports which steps an install would run.
func Status(opts *handlers.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which installation steps are already done",
		Long: `Evaluate every installation step against this host without changing it.

Steps that are already in place are marked done; the rest would run on the
next install. Uses the same flags and saved answers as an install.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), *opts)
		},
	}
}
