package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/meteou/internal/output"
	"github.com/i474232898/meteou/internal/weather"
)

func newWeatherCommand(deps Dependencies) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show current conditions and the short-term forecast for a point.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := deps.Weather.Fetch(cmd.Context(), lat, lon)
			if err != nil {
				return fail(cmd, err)
			}
			return writeResult(cmd, report, func() string {
				return renderReport(report)
			})
		},
	}
	addCoordFlags(cmd.Flags(), &lat, &lon)
	_ = requireCoordFlags(cmd)
	return cmd
}

func renderReport(r weather.Report) string {
	title := fmt.Sprintf("%s (%s, %s)", r.Place, formatCoord(r.Latitude), formatCoord(r.Longitude))
	if r.Place == "" {
		title = fmt.Sprintf("%s, %s", formatCoord(r.Latitude), formatCoord(r.Longitude))
	}

	current := output.RenderTable(title, nil, [][]string{
		{"Temperature", fmt.Sprintf("%d°C (feels like %d°C)", r.Temperature, r.FeelsLike)},
		{"Conditions", fmt.Sprintf("%s [%s]", r.Description, r.Icon)},
		{"Humidity", strconv.FormatFloat(r.Humidity, 'f', -1, 64) + "%"},
		{"Wind", strconv.FormatFloat(r.WindSpeed, 'f', 1, 64) + " m/s"},
		{"Pressure", strconv.FormatFloat(r.Pressure, 'f', -1, 64) + " hPa"},
		{"Visibility", strconv.FormatFloat(r.Visibility/1000, 'f', 1, 64) + " km"},
	})

	rows := make([][]string, 0, len(r.Forecast))
	for _, p := range r.Forecast {
		rows = append(rows, []string{p.Time, fmt.Sprintf("%d°C", p.Temperature), string(p.Icon)})
	}
	forecast := output.RenderTable("Forecast", []string{"TIME", "TEMP", "ICON"}, rows)

	return strings.Join([]string{current, forecast}, "\n\n")
}
