package triprepo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
)

//go:embed schema.sql
var schema string

// Migrate creates the trips table if it is missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply trip schema: %w", err)
	}
	return nil
}

// PostgresRepository implements trip.Repository using pgx. Trip state is stored as JSONB.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new trip row.
func (r *PostgresRepository) Create(ctx context.Context, t trip.Trip) error {
	state, err := json.Marshal(t.State)
	if err != nil {
		return fmt.Errorf("encode trip state: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO trips (id, city, state, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.State.City, state, t.Version, t.CreatedAt, t.UpdatedAt)
	return err
}

// Get fetches a trip by handle.
func (r *PostgresRepository) Get(ctx context.Context, id string) (trip.Trip, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, state, version, created_at, updated_at
		FROM trips
		WHERE id = $1
	`, id)
	t, err := scanTrip(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return trip.Trip{}, false, nil
		}
		return trip.Trip{}, false, err
	}
	return t, true, nil
}

// Update writes the trip only if the stored version still equals expectedVersion.
func (r *PostgresRepository) Update(ctx context.Context, t trip.Trip, expectedVersion int) error {
	state, err := json.Marshal(t.State)
	if err != nil {
		return fmt.Errorf("encode trip state: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE trips
		SET state = $2, version = $3, updated_at = $4
		WHERE id = $1 AND version = $5
	`, t.ID, state, t.Version, t.UpdatedAt, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return trip.ErrVersionConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (trip.Trip, error) {
	var (
		t       trip.Trip
		payload []byte
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&t.ID, &payload, &t.Version, &created, &updated); err != nil {
		return trip.Trip{}, err
	}
	if err := json.Unmarshal(payload, &t.State); err != nil {
		return trip.Trip{}, fmt.Errorf("decode trip state: %w", err)
	}
	t.CreatedAt = created.UTC()
	t.UpdatedAt = updated.UTC()
	return t, nil
}

var _ trip.Repository = (*PostgresRepository)(nil)
