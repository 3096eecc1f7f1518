package trip

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/yanqian/ai-tripplanner/internal/domain/evaluation"
	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	apperrors "github.com/yanqian/ai-tripplanner/pkg/errors"
	"github.com/yanqian/ai-tripplanner/pkg/keylock"
	"github.com/yanqian/ai-tripplanner/pkg/util"
)

const (
	planMaxResults    = 25
	weatherMaxResults = 20
	forecastWindow    = 3
	rainThresholdMM   = 5.0
)

var indoorInterests = []string{"history", "culture"}

// Service plans and re-plans trips addressed by handle.
type Service interface {
	Plan(ctx context.Context, req PlanRequest) (Trip, error)
	Get(ctx context.Context, id string) (Trip, error)
	EditDay(ctx context.Context, id string, day int, pace string) (EditResult, error)
	Explain(ctx context.Context, id, target string) (Explanation, error)
	AdjustForWeather(ctx context.Context, id string) (WeatherAdjustment, error)
	Feasibility(ctx context.Context, id string) (evaluation.FeasibilityReport, error)
	Grounding(ctx context.Context, id string) (evaluation.GroundingReport, error)
}

type service struct {
	pois    POIProvider
	weather WeatherProvider
	repo    Repository
	locks   *keylock.MutexMap
	logger  *slog.Logger
	now     util.Clock
	newID   func() string
}

// NewService wires the trip orchestrator.
func NewService(pois POIProvider, weather WeatherProvider, repo Repository, logger *slog.Logger) Service {
	return &service{
		pois:    pois,
		weather: weather,
		repo:    repo,
		locks:   keylock.NewMutexMap(),
		logger:  logger.With("component", "trip.service"),
		now:     util.NowUTC,
		newID:   func() string { return uuid.NewString() },
	}
}

func (s *service) Plan(ctx context.Context, req PlanRequest) (Trip, error) {
	city, interests, constraints, err := normalizePlanRequest(req)
	if err != nil {
		return Trip{}, err
	}

	candidates, err := s.search(ctx, SearchQuery{City: city, Interests: interests, MaxResults: planMaxResults})
	if err != nil {
		return Trip{}, err
	}
	days, err := itinerary.Build(candidates, constraints)
	if err != nil {
		return Trip{}, err
	}

	now := s.now()
	t := Trip{
		ID: s.newID(),
		State: itinerary.TripState{
			City:        city,
			Interests:   interests,
			Constraints: constraints,
			Days:        days,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Trip{}, apperrors.Wrap(CodeStorage, "failed to store trip", err)
	}
	s.logger.Info("trip planned", "trip_id", t.ID, "city", city, "days", constraints.Days, "pace", constraints.Pace, "pois", t.State.POICount())
	return t.Clone(), nil
}

func (s *service) Get(ctx context.Context, id string) (Trip, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	return t.Clone(), nil
}

func (s *service) EditDay(ctx context.Context, id string, day int, pace string) (EditResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	t, err := s.load(ctx, id)
	if err != nil {
		return EditResult{}, err
	}
	if day < 1 || day > len(t.State.Days) {
		return EditResult{}, apperrors.Newf(CodeInvalidDayNumber, "day %d is out of range 1..%d", day, len(t.State.Days))
	}
	newPace, err := itinerary.ParsePace(pace)
	if err != nil {
		return EditResult{}, err
	}
	before := t.State.Clone()

	candidates, err := s.search(ctx, SearchQuery{City: t.State.City, Interests: t.State.Interests, MaxResults: planMaxResults})
	if err != nil {
		return EditResult{}, err
	}
	rebuilt, err := s.rebuildDay(candidates, t.State.Constraints, newPace, day)
	if err != nil {
		return EditResult{}, err
	}
	t.State.Days[day-1] = rebuilt

	if err := s.save(ctx, &t); err != nil {
		return EditResult{}, err
	}

	report := evaluation.EditCorrectness(before, t.State, day)
	if report.Status == evaluation.StatusFail {
		s.logger.Error("day edit touched other days", "trip_id", id, "day", day, "unexpected", report.UnexpectedChanges)
	}
	s.logger.Info("trip day edited", "trip_id", id, "day", day, "pace", newPace, "pois", len(rebuilt.Blocks))
	return EditResult{Trip: t.Clone(), Before: before, Evaluation: report}, nil
}

func (s *service) Feasibility(ctx context.Context, id string) (evaluation.FeasibilityReport, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return evaluation.FeasibilityReport{}, err
	}
	return evaluation.Feasibility(t.State), nil
}

func (s *service) Grounding(ctx context.Context, id string) (evaluation.GroundingReport, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return evaluation.GroundingReport{}, err
	}
	return evaluation.Grounding(t.State), nil
}

// rebuildDay packs a single day from candidates and renumbers it into place.
func (s *service) rebuildDay(candidates []itinerary.CandidatePOI, base itinerary.TripConstraints, pace itinerary.Pace, day int) (itinerary.DayPlan, error) {
	constraints := itinerary.TripConstraints{
		Days:           1,
		Pace:           pace,
		DailyStartHour: base.DailyStartHour,
		DailyEndHour:   base.DailyEndHour,
	}
	days, err := itinerary.Build(candidates, constraints)
	if err != nil {
		return itinerary.DayPlan{}, err
	}
	rebuilt := days[0]
	rebuilt.Day = day
	return rebuilt, nil
}

func (s *service) search(ctx context.Context, query SearchQuery) ([]itinerary.CandidatePOI, error) {
	candidates, err := s.pois.Search(ctx, query)
	if err != nil {
		if apperrors.IsCode(err, CodeUnsupportedCity) {
			return nil, err
		}
		return nil, apperrors.Wrap(CodePOIProvider, "failed to fetch points of interest", err)
	}
	s.logger.Debug("poi candidates fetched", "city", query.City, "interests", query.Interests, "count", len(candidates))
	return candidates, nil
}

func (s *service) load(ctx context.Context, id string) (Trip, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Trip{}, noActiveTrip(id)
	}
	t, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Trip{}, apperrors.Wrap(CodeStorage, "failed to load trip", err)
	}
	if !ok {
		return Trip{}, noActiveTrip(id)
	}
	return t, nil
}

func (s *service) save(ctx context.Context, t *Trip) error {
	expected := t.Version
	t.Version++
	t.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, *t, expected); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return apperrors.Wrap(CodeConflict, "trip was modified concurrently, retry the request", err)
		}
		return apperrors.Wrap(CodeStorage, "failed to store trip", err)
	}
	return nil
}

func normalizePlanRequest(req PlanRequest) (string, []string, itinerary.TripConstraints, error) {
	city := strings.TrimSpace(req.City)
	if city == "" {
		return "", nil, itinerary.TripConstraints{}, apperrors.Newf(CodeValidation, "city cannot be empty")
	}
	interests := normalizeInterests(req.Interests)
	if len(interests) == 0 {
		return "", nil, itinerary.TripConstraints{}, apperrors.Newf(CodeValidation, "at least one interest is required")
	}
	pace, err := itinerary.ParsePace(req.Pace)
	if err != nil {
		return "", nil, itinerary.TripConstraints{}, err
	}

	constraints := itinerary.TripConstraints{
		Days:           req.Days,
		Pace:           pace,
		DailyStartHour: itinerary.DefaultStartHour,
		DailyEndHour:   itinerary.DefaultEndHour,
	}
	if req.StartHour != nil {
		constraints.DailyStartHour = *req.StartHour
	}
	if req.EndHour != nil {
		constraints.DailyEndHour = *req.EndHour
	}
	if err := constraints.Validate(); err != nil {
		return "", nil, itinerary.TripConstraints{}, err
	}
	return city, interests, constraints, nil
}

func normalizeInterests(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, interest := range raw {
		interest = strings.ToLower(strings.TrimSpace(interest))
		if interest == "" || slices.Contains(out, interest) {
			continue
		}
		out = append(out, interest)
	}
	return out
}
