package triprepo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
)

func sampleTrip() trip.Trip {
	ts := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	return trip.Trip{
		ID: "0f8d9a4e-2b7c-4c1f-8e3a-5d6b7c8d9e0f",
		State: itinerary.TripState{
			City:        "Delhi",
			Interests:   []string{"history"},
			Constraints: itinerary.TripConstraints{Days: 1, Pace: itinerary.PaceRelaxed, DailyStartHour: 9, DailyEndHour: 18},
			Days: []itinerary.DayPlan{{Day: 1, Blocks: []itinerary.POIBlock{{
				POIID: "osm_1", Name: "Red Fort", Category: "museum", Lat: 28.6562, Lon: 77.241,
				DurationMinutes: 90, Indoor: true, Source: "OpenStreetMap",
			}}}},
		},
		Version:   1,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestMemoryRepositoryLifecycle(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	original := sampleTrip()

	require.NoError(t, repo.Create(ctx, original))
	require.Error(t, repo.Create(ctx, original))

	got, ok, err := repo.Get(ctx, original.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, original, got)

	got.State.Days[0].Blocks[0].Name = "mutated"
	again, _, _ := repo.Get(ctx, original.ID)
	require.Equal(t, "Red Fort", again.State.Days[0].Blocks[0].Name)

	next := original.Clone()
	next.Version = 2
	require.NoError(t, repo.Update(ctx, next, 1))
	require.ErrorIs(t, repo.Update(ctx, next, 1), trip.ErrVersionConflict)

	_, ok, err = repo.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScanTrip(t *testing.T) {
	want := sampleTrip()
	payload, err := json.Marshal(want.State)
	require.NoError(t, err)

	got, err := scanTrip(fakeRow{values: []any{want.ID, payload, 1, want.CreatedAt, want.UpdatedAt}})
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = scanTrip(fakeRow{values: []any{want.ID, []byte("{"), 1, want.CreatedAt, want.UpdatedAt}})
	require.ErrorContains(t, err, "decode trip state")

	_, err = scanTrip(fakeRow{err: errors.New("conn reset")})
	require.ErrorContains(t, err, "conn reset")
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *[]byte:
			*p = r.values[i].([]byte)
		case *int:
			*p = r.values[i].(int)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}
