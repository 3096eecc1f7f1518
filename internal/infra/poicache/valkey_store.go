package poicache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
)

// ValkeyStore shares cached candidates across instances through a Valkey-compatible server.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "poi"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Get implements Store.
func (s *ValkeyStore) Get(ctx context.Context, key string) ([]itinerary.CandidatePOI, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.entryKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var candidates []itinerary.CandidatePOI
	if err := json.Unmarshal([]byte(payload), &candidates); err != nil {
		return nil, false, err
	}
	return candidates, true, nil
}

// Set implements Store.
func (s *ValkeyStore) Set(ctx context.Context, key string, candidates []itinerary.CandidatePOI, ttl time.Duration) error {
	payload, err := json.Marshal(candidates)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) entryKey(key string) string {
	return fmt.Sprintf("%s:candidates:%s", s.prefix, key)
}

var _ Store = (*ValkeyStore)(nil)
