package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/meteou/internal/geocode"
	"github.com/i474232898/meteou/internal/output"
)

func newSearchCommand(deps Dependencies) *cobra.Command {
	var save int

	cmd := &cobra.Command{
		Use:   "search <city>",
		Short: "Find a city by name and optionally save one of the matches.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cands, err := deps.Search.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fail(cmd, err)
			}

			if save > 0 {
				if save > len(cands) {
					return fmt.Errorf("--save %d: only %d match(es) found", save, len(cands))
				}
				c := cands[save-1]
				locs, err := deps.Search.Save(cmd.Context(), c)
				if err != nil {
					return fail(cmd, err)
				}
				return writeResult(cmd, locs, func() string {
					return fmt.Sprintf("%s was added to your saved locations.\n\n%s",
						c.Name, renderLocations(deps.Favorites, locs))
				})
			}

			return writeResult(cmd, cands, func() string {
				return renderCandidates(cands)
			})
		},
	}
	cmd.Flags().IntVar(&save, "save", 0, "Save the match with this number (1-based) to your favorites.")
	return cmd
}

func renderCandidates(cands []geocode.Candidate) string {
	if len(cands) == 0 {
		return "No city found."
	}
	rows := make([][]string, 0, len(cands))
	for i, c := range cands {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), c.Name, c.State, c.Country, formatCoord(c.Latitude), formatCoord(c.Longitude),
		})
	}
	return output.RenderTable("", []string{"#", "NAME", "STATE", "COUNTRY", "LATITUDE", "LONGITUDE"}, rows)
}
