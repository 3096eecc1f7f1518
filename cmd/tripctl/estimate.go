package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
)

func newEstimateCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:     "estimate",
		Short:   "Estimate urban travel time between two points",
		Example: `  tripctl estimate --from 28.6139,77.2090 --to 28.5245,77.1855`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := parseCoordinates(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			dest, err := parseCoordinates(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			est, err := itinerary.EstimateTravel(origin, dest)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), est)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "origin as lat,lon")
	cmd.Flags().StringVar(&to, "to", "", "destination as lat,lon")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// parseCoordinates reads a "lat,lon" pair. Range checks are left to the caller.
func parseCoordinates(raw string) (itinerary.Coordinates, error) {
	latRaw, lonRaw, ok := strings.Cut(raw, ",")
	if !ok {
		return itinerary.Coordinates{}, fmt.Errorf("expected lat,lon but got %q", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return itinerary.Coordinates{}, fmt.Errorf("invalid latitude %q", latRaw)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if err != nil {
		return itinerary.Coordinates{}, fmt.Errorf("invalid longitude %q", lonRaw)
	}
	return itinerary.Coordinates{Lat: lat, Lon: lon}, nil
}
