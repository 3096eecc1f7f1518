package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/yanqian/ai-tripplanner/internal/domain/evaluation"
	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
	"github.com/yanqian/ai-tripplanner/internal/infra/config"
	"github.com/yanqian/ai-tripplanner/internal/infra/httpx"
	"github.com/yanqian/ai-tripplanner/internal/infra/openmeteo"
	"github.com/yanqian/ai-tripplanner/internal/infra/overpass"
	"github.com/yanqian/ai-tripplanner/internal/infra/triprepo"
)

type planReport struct {
	Trip        trip.Trip                    `json:"trip"`
	Weather     *trip.WeatherAdjustment      `json:"weather,omitempty"`
	Feasibility evaluation.FeasibilityReport `json:"feasibility"`
	Grounding   evaluation.GroundingReport   `json:"grounding"`
}

type planOptions struct {
	city      string
	interests []string
	days      int
	pace      string
	weather   bool
}

// newTripService is swapped in tests to avoid the live providers.
var newTripService = func(cfg *config.Config, logger *slog.Logger) trip.Service {
	retry := httpx.RetryPolicy{MaxAttempts: cfg.Outbound.MaxAttempts, BaseBackoff: cfg.Outbound.BaseBackoff}
	cities := make(map[string]itinerary.Coordinates, len(cfg.Weather.Cities))
	for name, p := range cfg.Weather.Cities {
		cities[name] = itinerary.Coordinates{Lat: p.Lat, Lon: p.Lon}
	}
	pois := overpass.NewClient(cfg.POI.OverpassURL, cfg.POI.Areas, cfg.POI.Timeout, retry)
	weather := openmeteo.NewClient(cfg.Weather.BaseURL, cities, cfg.Weather.MaxDays, cfg.Weather.Timeout, retry)
	return trip.NewService(pois, weather, triprepo.NewMemoryRepository(), logger)
}

func newPlanCmd(flags *globalFlags) *cobra.Command {
	opts := &planOptions{}
	cmd := &cobra.Command{
		Use:     "plan",
		Short:   "Plan a trip and print it with its evaluation reports",
		Example: `  tripctl plan --city Delhi --interests history,food --days 2 --pace relaxed --weather`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.city == "" {
				opts.city = cfg.Planner.DefaultCity
			}
			svc := newTripService(cfg, flags.logger(cmd))
			report, err := runPlan(cmd, svc, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&opts.city, "city", "", "city to plan in (defaults to planner.defaultCity)")
	cmd.Flags().StringSliceVar(&opts.interests, "interests", nil, "comma separated interests, e.g. history,food")
	cmd.Flags().IntVar(&opts.days, "days", 1, "number of days")
	cmd.Flags().StringVar(&opts.pace, "pace", string(itinerary.PaceModerate), "relaxed, moderate or packed")
	cmd.Flags().BoolVar(&opts.weather, "weather", false, "rebuild rainy days from the forecast after planning")
	_ = cmd.MarkFlagRequired("interests")
	return cmd
}

func runPlan(cmd *cobra.Command, svc trip.Service, opts *planOptions) (planReport, error) {
	ctx := cmd.Context()
	t, err := svc.Plan(ctx, trip.PlanRequest{
		City:      opts.city,
		Interests: opts.interests,
		Days:      opts.days,
		Pace:      opts.pace,
	})
	if err != nil {
		return planReport{}, err
	}

	report := planReport{Trip: t}
	if opts.weather {
		adj, err := svc.AdjustForWeather(ctx, t.ID)
		if err != nil {
			return planReport{}, err
		}
		report.Weather = &adj
		report.Trip = adj.Trip
	}
	if report.Feasibility, err = svc.Feasibility(ctx, t.ID); err != nil {
		return planReport{}, err
	}
	if report.Grounding, err = svc.Grounding(ctx, t.ID); err != nil {
		return planReport{}, err
	}
	return report, nil
}
