package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"deliveryeta/internal/maps"
	"deliveryeta/internal/modules/features"
	"deliveryeta/internal/types"
)

var routeCmd = &cobra.Command{
	Use:   "route lat,lon lat,lon",
	Short: "compare the straight-line distance the model sees with the driving distance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parsePoint(args[0])
		if err != nil {
			return err
		}
		to, err := parsePoint(args[1])
		if err != nil {
			return err
		}
		p, err := loadPipeline()
		if err != nil {
			return err
		}

		km := features.HaversineKm(from, to)
		bucket, ok := p.Scheme().Distance.Label(km)
		if !ok {
			bucket = "out of range"
		}
		fmt.Printf("haversine: %.2f km (%s)\n", km, bucket)

		if cfg.Maps.APIKey == "" {
			fmt.Println("road: skipped, DELIVERY_MAPS_API_KEY not set")
			return nil
		}
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
		est, err := routes.DrivingEstimate(cmd.Context(), from, to)
		if err != nil {
			return err
		}
		fmt.Printf("road: %.2f km, %s via %s\n", est.DistanceKm, est.Duration.Round(time.Second), est.Summary)
		return nil
	},
}

func parsePoint(s string) (types.Point, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return types.Point{}, fmt.Errorf("point %q: want lat,lon", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return types.Point{Lat: la, Lng: lo}, nil
}
