package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/meteou/internal/location"
	"github.com/i474232898/meteou/internal/output"
	"github.com/i474232898/meteou/internal/weather"
)

type positionResult struct {
	Position location.Location `json:"position" yaml:"position"`
	Weather  *weather.Report   `json:"weather,omitempty" yaml:"weather,omitempty"`
}

func newPositionCommand(deps Dependencies) *cobra.Command {
	var withWeather bool

	cmd := &cobra.Command{
		Use:   "position",
		Short: "Show the current position, optionally with its weather.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pos, err := deps.Position.Position(cmd.Context())
			if err != nil {
				return fail(cmd, err)
			}
			res := positionResult{Position: pos}

			if withWeather {
				report, err := deps.Weather.Fetch(cmd.Context(), pos.Latitude, pos.Longitude)
				if err != nil {
					return fail(cmd, err)
				}
				res.Weather = &report
			}

			return writeResult(cmd, res, func() string {
				parts := []string{output.RenderTable("", nil, [][]string{
					{"Latitude", formatCoord(pos.Latitude)},
					{"Longitude", formatCoord(pos.Longitude)},
				})}
				if res.Weather != nil {
					parts = append(parts, renderReport(*res.Weather))
				}
				return strings.Join(parts, "\n\n")
			})
		},
	}
	cmd.Flags().BoolVar(&withWeather, "weather", false, "Also fetch the weather at the position.")
	return cmd
}
