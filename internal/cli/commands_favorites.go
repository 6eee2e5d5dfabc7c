package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/meteou/internal/app"
	"github.com/i474232898/meteou/internal/location"
	"github.com/i474232898/meteou/internal/output"
)

func newFavoritesCommand(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List, add, remove and open saved locations.",
	}
	cmd.AddCommand(newFavoritesListCommand(deps))
	cmd.AddCommand(newFavoritesAddCommand(deps))
	cmd.AddCommand(newFavoritesRemoveCommand(deps))
	cmd.AddCommand(newFavoritesSelectCommand(deps))
	return cmd
}

func newFavoritesListCommand(deps Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show bundled defaults followed by your saved locations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			locs := deps.Favorites.List(cmd.Context())
			return writeResult(cmd, locs, func() string {
				return renderLocations(deps.Favorites, locs)
			})
		},
	}
}

func newFavoritesAddCommand(deps Dependencies) *cobra.Command {
	var name string
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a location.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc := location.Location{Name: name, Latitude: lat, Longitude: lon}
			locs, err := deps.Favorites.Add(cmd.Context(), loc)
			if err != nil {
				return fail(cmd, err)
			}
			return writeResult(cmd, locs, func() string {
				return fmt.Sprintf("%s was added to your saved locations.\n\n%s",
					strings.TrimSpace(name), renderLocations(deps.Favorites, locs))
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (required).")
	addCoordFlags(cmd.Flags(), &lat, &lon)
	_ = cmd.MarkFlagRequired("name")
	_ = requireCoordFlags(cmd)
	return cmd
}

func newFavoritesRemoveCommand(deps Dependencies) *cobra.Command {
	var lat, lon float64
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a saved location. Bundled defaults cannot be removed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc := location.Location{Latitude: lat, Longitude: lon}
			if deps.Favorites.IsDefault(loc) {
				return fail(cmd, location.ErrProtected)
			}

			confirmed := yes
			if !confirmed {
				label := describe(deps.Favorites.List(cmd.Context()), loc, deps.Favorites.Precision())
				confirmed = confirm(cmd, deps, fmt.Sprintf("Remove %s from your favorites? [y/N] ", label))
			}

			locs, err := deps.Favorites.Remove(cmd.Context(), loc, confirmed)
			if err != nil {
				return fail(cmd, err)
			}
			return writeResult(cmd, locs, func() string {
				return renderLocations(deps.Favorites, locs)
			})
		},
	}
	addCoordFlags(cmd.Flags(), &lat, &lon)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation.")
	_ = requireCoordFlags(cmd)
	return cmd
}

func newFavoritesSelectCommand(deps Dependencies) *cobra.Command {
	var name string
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Print the map navigation parameters for a location.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := deps.Favorites.Select(location.Location{Name: name, Latitude: lat, Longitude: lon})
			return writeResult(cmd, p, func() string {
				return renderNavParams(p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name.")
	addCoordFlags(cmd.Flags(), &lat, &lon)
	_ = requireCoordFlags(cmd)
	return cmd
}

func confirm(cmd *cobra.Command, deps Dependencies, prompt string) bool {
	if deps.Stdin == nil {
		return false
	}
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, _ := bufio.NewReader(deps.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// describe names loc from the current list when possible.
func describe(locs []location.Location, loc location.Location, precision int) string {
	key := loc.Key(precision)
	for _, l := range locs {
		if l.Key(precision) == key && l.Name != "" {
			return l.Name
		}
	}
	return formatCoord(loc.Latitude) + "," + formatCoord(loc.Longitude)
}

func renderLocations(f *app.Favorites, locs []location.Location) string {
	rows := make([][]string, 0, len(locs))
	for _, l := range locs {
		kind := "saved"
		if f.IsDefault(l) {
			kind = "default"
		}
		rows = append(rows, []string{l.Name, formatCoord(l.Latitude), formatCoord(l.Longitude), kind})
	}
	return output.RenderTable("Saved locations", []string{"NAME", "LATITUDE", "LONGITUDE", "KIND"}, rows)
}

func renderNavParams(p app.NavParams) string {
	return output.RenderTable("", []string{"NAME", "LATITUDE", "LONGITUDE"}, [][]string{
		{p.Name, formatCoord(p.Latitude), formatCoord(p.Longitude)},
	})
}
