package trip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-tripplanner/internal/domain/evaluation"
	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
	"github.com/yanqian/ai-tripplanner/pkg/keylock"
	"github.com/yanqian/ai-tripplanner/pkg/util"
)

const tripID = "9b2f4c1e-3f6a-4d0e-9a51-6f2d8c7b1a00"

func TestServicePlanSuccess(t *testing.T) {
	pois := &stubPOIProvider{}
	svc := newServiceUnderTest(pois, &stubWeather{})

	got, err := svc.Plan(context.Background(), PlanRequest{
		City:      " Delhi ",
		Interests: []string{"History", "food", "history"},
		Days:      2,
		Pace:      "Relaxed",
	})
	require.NoError(t, err)
	require.Equal(t, tripID, got.ID)
	require.Equal(t, 1, got.Version)
	require.Equal(t, "Delhi", got.State.City)
	require.Equal(t, []string{"history", "food"}, got.State.Interests)
	require.Equal(t, itinerary.TripConstraints{Days: 2, Pace: itinerary.PaceRelaxed, DailyStartHour: 9, DailyEndHour: 18}, got.State.Constraints)
	require.Len(t, got.State.Days, 2)
	require.Len(t, got.State.Days[0].Blocks, 3)
	require.Len(t, got.State.Days[1].Blocks, 3)

	require.Equal(t, []SearchQuery{{City: "Delhi", Interests: []string{"history", "food"}, MaxResults: 25}}, pois.queries)
}

func TestServicePlanCustomHours(t *testing.T) {
	svc := newServiceUnderTest(&stubPOIProvider{}, &stubWeather{})
	start, end := 10, 13

	got, err := svc.Plan(context.Background(), PlanRequest{City: "Delhi", Interests: []string{"history"}, Days: 1, Pace: "packed", StartHour: &start, EndHour: &end})
	require.NoError(t, err)
	require.Equal(t, 180, got.State.Constraints.AvailableMinutes())
	require.LessOrEqual(t, got.State.Days[0].TotalMinutes(), 180)
}

func TestServicePlanValidation(t *testing.T) {
	cases := map[string]PlanRequest{
		"empty city":   {City: "", Interests: []string{"history"}, Days: 1, Pace: "relaxed"},
		"no interests": {City: "Delhi", Interests: []string{" "}, Days: 1, Pace: "relaxed"},
		"zero days":    {City: "Delhi", Interests: []string{"history"}, Days: 0, Pace: "relaxed"},
		"bad pace":     {City: "Delhi", Interests: []string{"history"}, Days: 1, Pace: "sprint"},
		"end <= start": {City: "Delhi", Interests: []string{"history"}, Days: 1, Pace: "relaxed", StartHour: intPtr(18)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			pois := &stubPOIProvider{}
			svc := newServiceUnderTest(pois, &stubWeather{})
			_, err := svc.Plan(context.Background(), req)
			require.True(t, apperrors.IsCode(err, CodeValidation), "got %v", err)
			require.Empty(t, pois.queries)
		})
	}
}

func TestServicePlanProviderErrors(t *testing.T) {
	pois := &stubPOIProvider{searchFn: func(q SearchQuery) ([]itinerary.CandidatePOI, error) {
		return nil, UnsupportedCity(q.City)
	}}
	svc := newServiceUnderTest(pois, &stubWeather{})
	_, err := svc.Plan(context.Background(), PlanRequest{City: "Paris", Interests: []string{"history"}, Days: 1, Pace: "relaxed"})
	require.True(t, apperrors.IsCode(err, CodeUnsupportedCity))

	pois.searchFn = func(SearchQuery) ([]itinerary.CandidatePOI, error) { return nil, errors.New("overpass timeout") }
	_, err = svc.Plan(context.Background(), PlanRequest{City: "Delhi", Interests: []string{"history"}, Days: 1, Pace: "relaxed"})
	require.True(t, apperrors.IsCode(err, CodePOIProvider))
}

func TestServiceEditDayReplacesOnlyThatDay(t *testing.T) {
	pois := &stubPOIProvider{}
	svc := newServiceUnderTest(pois, &stubWeather{})
	planned := planTrip(t, svc, 3, "relaxed")

	pois.searchFn = func(q SearchQuery) ([]itinerary.CandidatePOI, error) {
		return candidates("edit", 10, 60), nil
	}
	res, err := svc.EditDay(context.Background(), planned.ID, 2, "packed")
	require.NoError(t, err)

	require.Equal(t, evaluation.EditReport{ChangedDays: []int{2}, UnexpectedChanges: []int{}, Status: evaluation.StatusPass}, res.Evaluation)
	require.Equal(t, planned.State, res.Before)
	require.Equal(t, 2, res.Trip.Version)
	require.Equal(t, itinerary.PaceRelaxed, res.Trip.State.Constraints.Pace)

	day := res.Trip.State.Days[1]
	require.Equal(t, 2, day.Day)
	require.Len(t, day.Blocks, 5)
	require.Equal(t, "osm_edit_0", day.Blocks[0].POIID)
	require.Equal(t, planned.State.Days[0], res.Trip.State.Days[0])
	require.Equal(t, planned.State.Days[2], res.Trip.State.Days[2])

	last := pois.queries[len(pois.queries)-1]
	require.Equal(t, SearchQuery{City: "Delhi", Interests: []string{"history"}, MaxResults: 25}, last)

	stored, err := svc.Get(context.Background(), planned.ID)
	require.NoError(t, err)
	require.Equal(t, res.Trip, stored)
}

func TestServiceEditDayErrors(t *testing.T) {
	svc := newServiceUnderTest(&stubPOIProvider{}, &stubWeather{})
	planned := planTrip(t, svc, 2, "moderate")

	_, err := svc.EditDay(context.Background(), planned.ID, 3, "relaxed")
	require.True(t, apperrors.IsCode(err, CodeInvalidDayNumber))

	_, err = svc.EditDay(context.Background(), planned.ID, 0, "relaxed")
	require.True(t, apperrors.IsCode(err, CodeInvalidDayNumber))

	_, err = svc.EditDay(context.Background(), planned.ID, 1, "hectic")
	require.True(t, apperrors.IsCode(err, CodeValidation))

	_, err = svc.EditDay(context.Background(), "6f1c0c5e-0000-4000-8000-000000000000", 1, "relaxed")
	require.True(t, apperrors.IsCode(err, CodeNoActiveTrip))

	_, err = svc.EditDay(context.Background(), "not-a-handle", 1, "relaxed")
	require.True(t, apperrors.IsCode(err, CodeNoActiveTrip))
}

func TestServiceEditDayChecksTripAndDayBeforePace(t *testing.T) {
	pois := &stubPOIProvider{}
	svc := newServiceUnderTest(pois, &stubWeather{})
	planned := planTrip(t, svc, 2, "moderate")
	searchesBefore := len(pois.queries)

	_, err := svc.EditDay(context.Background(), "6f1c0c5e-0000-4000-8000-000000000000", 1, "hectic")
	require.True(t, apperrors.IsCode(err, CodeNoActiveTrip), "got %v", err)

	_, err = svc.EditDay(context.Background(), planned.ID, 9, "hectic")
	require.True(t, apperrors.IsCode(err, CodeInvalidDayNumber), "got %v", err)

	_, err = svc.EditDay(context.Background(), planned.ID, 1, "hectic")
	require.True(t, apperrors.IsCode(err, CodeValidation), "got %v", err)
	require.Equal(t, searchesBefore, len(pois.queries))
}

func TestServiceConcurrentEditsAreSerialized(t *testing.T) {
	svc := newServiceUnderTest(&stubPOIProvider{}, &stubWeather{})
	planned := planTrip(t, svc, 3, "relaxed")

	var wg sync.WaitGroup
	errs := make(chan error, 12)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pace := []string{"relaxed", "moderate", "packed"}[i%3]
			_, err := svc.EditDay(context.Background(), planned.ID, i%3+1, pace)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := svc.Get(context.Background(), planned.ID)
	require.NoError(t, err)
	require.Equal(t, 13, stored.Version)
	require.Len(t, stored.State.Days, 3)
}

func TestServiceSnapshotsAreIsolated(t *testing.T) {
	svc := newServiceUnderTest(&stubPOIProvider{}, &stubWeather{})
	planned := planTrip(t, svc, 1, "relaxed")

	planned.State.Days[0].Blocks[0].Name = "tampered"
	planned.State.Interests[0] = "tampered"

	stored, err := svc.Get(context.Background(), planned.ID)
	require.NoError(t, err)
	require.Equal(t, "POI plan 0", stored.State.Days[0].Blocks[0].Name)
	require.Equal(t, "history", stored.State.Interests[0])
}

func TestServiceExplain(t *testing.T) {
	svc := newServiceUnderTest(&stubPOIProvider{}, &stubWeather{})
	planned := planTrip(t, svc, 2, "relaxed")

	for _, target := range []string{"", "  ", "PLAN", "plan"} {
		exp, err := svc.Explain(context.Background(), planned.ID, target)
		require.NoError(t, err)
		require.Equal(t, ExplanationPlanSummary, exp.Type)
		require.Equal(t, 6, exp.TotalPOIs)
		require.Equal(t, 2, exp.Days)
		require.Equal(t, itinerary.PaceRelaxed, exp.Pace)
		require.Contains(t, exp.Message, "haversine")
	}

	exp, err := svc.Explain(context.Background(), planned.ID, "poi PLAN 4")
	require.NoError(t, err)
	require.Equal(t, ExplanationPOI, exp.Type)
	require.Equal(t, 2, exp.Day)
	require.Equal(t, "osm_plan_4", exp.POI.POIID)
	require.Len(t, exp.Reasons, 3)
	require.Equal(t, "Matches your interest in history (museum).", exp.Reasons[0])
	require.Contains(t, exp.Reasons[2], "minutes from the previous stop")

	first, err := svc.Explain(context.Background(), planned.ID, "plan 0")
	require.NoError(t, err)
	require.Contains(t, first.Reasons[1], "visit runs 09:00-10:30")
	require.Contains(t, first.Reasons[2], "First stop of day 1")

	_, err = svc.Explain(context.Background(), planned.ID, "Taj Mahal")
	require.True(t, apperrors.IsCode(err, CodeTargetNotFound))

	_, err = svc.Explain(context.Background(), "", "plan")
	require.True(t, apperrors.IsCode(err, CodeNoActiveTrip))
}

func TestServiceAdjustForWeatherRebuildsRainyDayOnly(t *testing.T) {
	pois := &stubPOIProvider{}
	weather := &stubWeather{forecast: []DailyForecast{
		{Date: "2026-10-20", PrecipitationMM: 10.0},
		{Date: "2026-10-21", PrecipitationMM: 0.0},
	}}
	svc := newServiceUnderTest(pois, weather)
	planned := planTrip(t, svc, 2, "relaxed")

	adj, err := svc.AdjustForWeather(context.Background(), planned.ID)
	require.NoError(t, err)
	require.Equal(t, []int{1}, adj.AdjustedDays)
	require.Equal(t, []string{"Delhi"}, weather.cities)

	require.NotEqual(t, planned.State.Days[0], adj.Trip.State.Days[0])
	require.Equal(t, 1, adj.Trip.State.Days[0].Day)
	require.Equal(t, "osm_indoor_0", adj.Trip.State.Days[0].Blocks[0].POIID)
	require.Equal(t, planned.State.Days[1], adj.Trip.State.Days[1])
	require.Equal(t, 2, adj.Trip.Version)

	last := pois.queries[len(pois.queries)-1]
	require.Equal(t, SearchQuery{City: "Delhi", Interests: []string{"history", "culture"}, MaxResults: 20}, last)
}

func TestServiceAdjustForWeatherCapsForecastWindow(t *testing.T) {
	pois := &stubPOIProvider{}
	rain := DailyForecast{PrecipitationMM: 12.5}
	weather := &stubWeather{forecast: []DailyForecast{rain, rain, rain, rain, rain}}
	svc := newServiceUnderTest(pois, weather)
	planned := planTrip(t, svc, 5, "relaxed")
	searchesBefore := len(pois.queries)

	adj, err := svc.AdjustForWeather(context.Background(), planned.ID)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, adj.AdjustedDays)
	require.Len(t, adj.Forecast, 3)
	require.Equal(t, planned.State.Days[3], adj.Trip.State.Days[3])
	require.Equal(t, planned.State.Days[4], adj.Trip.State.Days[4])
	require.Equal(t, searchesBefore+3, len(pois.queries))

	report := evaluation.EditCorrectness(planned.State, adj.Trip.State, 0)
	require.Equal(t, []int{1, 2, 3}, report.ChangedDays)
}

func TestServiceAdjustForWeatherFetchesCandidatesPerRainyDay(t *testing.T) {
	pois := &stubPOIProvider{}
	rain := DailyForecast{PrecipitationMM: 8}
	weather := &stubWeather{forecast: []DailyForecast{rain, {PrecipitationMM: 1}, rain}}
	svc := newServiceUnderTest(pois, weather)
	planned := planTrip(t, svc, 3, "relaxed")

	var indoorFetches int
	pois.searchFn = func(q SearchQuery) ([]itinerary.CandidatePOI, error) {
		indoorFetches++
		return candidates(fmt.Sprintf("fetch%d", indoorFetches), 20, 90), nil
	}
	adj, err := svc.AdjustForWeather(context.Background(), planned.ID)
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, adj.AdjustedDays)
	require.Equal(t, 2, indoorFetches)
	require.Equal(t, "osm_fetch1_0", adj.Trip.State.Days[0].Blocks[0].POIID)
	require.Equal(t, planned.State.Days[1], adj.Trip.State.Days[1])
	require.Equal(t, "osm_fetch2_0", adj.Trip.State.Days[2].Blocks[0].POIID)
	require.Equal(t, 3, adj.Trip.State.Days[2].Day)
}

func TestServiceAdjustForWeatherNoRain(t *testing.T) {
	weather := &stubWeather{forecast: []DailyForecast{{PrecipitationMM: 5.0}, {PrecipitationMM: 0.2}}}
	svc := newServiceUnderTest(&stubPOIProvider{}, weather)
	planned := planTrip(t, svc, 3, "moderate")

	adj, err := svc.AdjustForWeather(context.Background(), planned.ID)
	require.NoError(t, err)
	require.Empty(t, adj.AdjustedDays)
	require.Equal(t, planned, adj.Trip)
}

func TestServiceAdjustForWeatherProviderError(t *testing.T) {
	weather := &stubWeather{err: errors.New("open-meteo down")}
	svc := newServiceUnderTest(&stubPOIProvider{}, weather)
	planned := planTrip(t, svc, 1, "moderate")

	_, err := svc.AdjustForWeather(context.Background(), planned.ID)
	require.True(t, apperrors.IsCode(err, CodeWeatherProvider))
}

func TestServiceEvaluators(t *testing.T) {
	svc := newServiceUnderTest(&stubPOIProvider{}, &stubWeather{})
	planned := planTrip(t, svc, 2, "relaxed")

	feas, err := svc.Feasibility(context.Background(), planned.ID)
	require.NoError(t, err)
	require.Equal(t, evaluation.StatusPass, feas.OverallStatus)

	ground, err := svc.Grounding(context.Background(), planned.ID)
	require.NoError(t, err)
	require.Equal(t, evaluation.StatusPass, ground.OverallStatus)
	require.Equal(t, 6, ground.TotalPOIsChecked)

	_, err = svc.Grounding(context.Background(), "missing")
	require.True(t, apperrors.IsCode(err, CodeNoActiveTrip))
}

func TestServiceEditDayVersionConflict(t *testing.T) {
	svc := newServiceUnderTest(&stubPOIProvider{}, &stubWeather{})
	planned := planTrip(t, svc, 2, "relaxed")
	svc.repo = staleRepository{stubRepository: svc.repo.(*stubRepository)}

	_, err := svc.EditDay(context.Background(), planned.ID, 1, "packed")
	require.True(t, apperrors.IsCode(err, CodeConflict), "got %v", err)
	require.ErrorIs(t, err, ErrVersionConflict)
}

// staleRepository simulates another replica committing first.
type staleRepository struct {
	*stubRepository
}

func (staleRepository) Update(context.Context, Trip, int) error {
	return ErrVersionConflict
}

func newServiceUnderTest(pois POIProvider, weather WeatherProvider) *service {
	return &service{
		pois:    pois,
		weather: weather,
		repo:    newStubRepository(),
		locks:   keylock.NewMutexMap(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     util.FixedClock(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)),
		newID:   func() string { return tripID },
	}
}

func planTrip(t *testing.T, svc *service, days int, pace string) Trip {
	t.Helper()
	planned, err := svc.Plan(context.Background(), PlanRequest{City: "Delhi", Interests: []string{"history"}, Days: days, Pace: pace})
	require.NoError(t, err)
	return planned
}

// candidates spreads POIs a few hundred metres apart around central Delhi.
func candidates(prefix string, n, duration int) []itinerary.CandidatePOI {
	out := make([]itinerary.CandidatePOI, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, itinerary.CandidatePOI{
			ID:                fmt.Sprintf("osm_%s_%d", prefix, i),
			Name:              fmt.Sprintf("POI %s %d", prefix, i),
			Category:          "museum",
			Location:          itinerary.Coordinates{Lat: 28.60 + float64(i)*0.003, Lon: 77.20 + float64(i)*0.002},
			SuggestedDuration: duration,
			Indoor:            true,
			Source:            "OpenStreetMap",
		})
	}
	return out
}

func intPtr(v int) *int { return &v }

type stubPOIProvider struct {
	mu       sync.Mutex
	searchFn func(SearchQuery) ([]itinerary.CandidatePOI, error)
	queries  []SearchQuery
}

func (s *stubPOIProvider) Search(_ context.Context, q SearchQuery) ([]itinerary.CandidatePOI, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	fn := s.searchFn
	s.mu.Unlock()
	if fn != nil {
		return fn(q)
	}
	if len(q.Interests) == 2 && q.Interests[0] == "history" && q.Interests[1] == "culture" {
		return candidates("indoor", 20, 90), nil
	}
	return candidates("plan", 25, 90), nil
}

type stubWeather struct {
	forecast []DailyForecast
	err      error
	cities   []string
}

func (s *stubWeather) Forecast(_ context.Context, city string) ([]DailyForecast, error) {
	s.cities = append(s.cities, city)
	return s.forecast, s.err
}

type stubRepository struct {
	mu    sync.Mutex
	trips map[string]Trip
}

func newStubRepository() *stubRepository {
	return &stubRepository{trips: make(map[string]Trip)}
}

func (r *stubRepository) Create(_ context.Context, t Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trips[t.ID] = t.Clone()
	return nil
}

func (r *stubRepository) Get(_ context.Context, id string) (Trip, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[id]
	return t.Clone(), ok, nil
}

func (r *stubRepository) Update(_ context.Context, t Trip, expected int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.trips[t.ID]
	if !ok || current.Version != expected {
		return ErrVersionConflict
	}
	r.trips[t.ID] = t.Clone()
	return nil
}
