package poicache

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
)

// Store keeps candidate lists by cache key.
type Store interface {
	Get(ctx context.Context, key string) ([]itinerary.CandidatePOI, bool, error)
	Set(ctx context.Context, key string, candidates []itinerary.CandidatePOI, ttl time.Duration) error
}

// CachedProvider memoizes POI searches and collapses concurrent identical lookups into one upstream call.
type CachedProvider struct {
	next   trip.POIProvider
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedProvider wraps next with store.
func NewCachedProvider(next trip.POIProvider, store Store, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "poicache.provider"),
	}
}

// Search implements trip.POIProvider.
func (p *CachedProvider) Search(ctx context.Context, query trip.SearchQuery) ([]itinerary.CandidatePOI, error) {
	key := cacheKey(query)
	if cached, ok, err := p.store.Get(ctx, key); err != nil {
		p.logger.Warn("poi cache read failed", "key", key, "error", err)
	} else if ok {
		p.logger.Debug("poi cache hit", "key", key, "count", len(cached))
		return cached, nil
	}

	v, err, shared := p.group.Do(key, func() (any, error) {
		candidates, err := p.next.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		if err := p.store.Set(ctx, key, candidates, p.ttl); err != nil {
			p.logger.Warn("poi cache write failed", "key", key, "error", err)
		}
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Debug("poi search coalesced", "key", key)
	}
	return slices.Clone(v.([]itinerary.CandidatePOI)), nil
}

// cacheKey ignores interest order and case so equivalent searches share an entry.
func cacheKey(q trip.SearchQuery) string {
	interests := make([]string, 0, len(q.Interests))
	for _, interest := range q.Interests {
		interests = append(interests, strings.ToLower(strings.TrimSpace(interest)))
	}
	slices.Sort(interests)
	interests = slices.Compact(interests)
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(strings.TrimSpace(q.City)), strings.Join(interests, ","), q.MaxResults)
}

var _ trip.POIProvider = (*CachedProvider)(nil)
