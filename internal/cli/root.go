package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	root := &cobra.Command{
		Use:           "meteou",
		Short:         "Look up the weather for a map point, a saved city or a search result.",
		Version:       resolvedVersion(deps.Version),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().String("format", "table", "Output format: table, json or yaml.")
	root.SetHelpCommand(&cobra.Command{Hidden: true})

	root.AddCommand(newServeCommand(deps))
	root.AddCommand(newFavoritesCommand(deps))
	root.AddCommand(newWeatherCommand(deps))
	root.AddCommand(newSearchCommand(deps))
	root.AddCommand(newPositionCommand(deps))

	return root
}

func resolvedVersion(v string) string {
	if v == "" {
		return "dev"
	}
	return v
}

// addCoordFlags registers the --lat/--lon pair on fs.
func addCoordFlags(fs *pflag.FlagSet, lat, lon *float64) {
	fs.Float64Var(lat, "lat", 0, "Latitude in decimal degrees (required).")
	fs.Float64Var(lon, "lon", 0, "Longitude in decimal degrees (required).")
}

func requireCoordFlags(cmd *cobra.Command) error {
	for _, name := range []string{"lat", "lon"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			return fmt.Errorf("mark --%s required: %w", name, err)
		}
	}
	return nil
}

func newServeCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deps.Serve == nil {
				return fmt.Errorf("serve is not available")
			}
			return deps.Serve(cmd.Context())
		},
	}
}
