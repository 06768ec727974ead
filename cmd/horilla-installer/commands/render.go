package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/horilla-opensource/horilla-installer/cmd/horilla-installer/handlers"
	"github.com/horilla-opensource/horilla-installer/internal/render"
)

// Render returns the command that prints a generated artifact.
func Render(opts *handlers.Options) *cobra.Command {
	kinds := make([]string, 0, len(render.Kinds()))
	for _, k := range render.Kinds() {
		kinds = append(kinds, string(k))
	}

	return &cobra.Command{
		Use:   "render <" + strings.Join(kinds, "|") + ">",
		Short: "Print a generated file without installing",
		Long: `Print a file exactly as the installer would write it, using the same
flags and saved answers as an install. Nothing on the host is changed.

Examples:
  horilla-installer render compose --domain hr.example.com
  horilla-installer render proxy-site-tls --domain hr.example.com`,
		ValidArgs: kinds,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Render(cmd.Context(), *opts, args[0])
		},
	}
}
