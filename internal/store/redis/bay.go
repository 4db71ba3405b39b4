package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

// DefaultBayTTL bounds how long a bay survives without being reloaded
const DefaultBayTTL = 48 * time.Hour

// GetBay retrieves a bay from Redis by UUID
func (s *Store) GetBay(ctx context.Context, id string) (*domain.Bay, error) {
	data, err := s.client.Get(ctx, BayKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &domain.NotFoundError{Resource: "bay", ID: id}
		}
		return nil, fmt.Errorf("failed to get bay: %w", err)
	}

	var bay domain.Bay
	if err := json.Unmarshal(data, &bay); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bay: %w", err)
	}
	return &bay, nil
}

// GetAllBays retrieves all bays from Redis
func (s *Store) GetAllBays(ctx context.Context) ([]*domain.Bay, error) {
	ids, err := s.client.SMembers(ctx, KeyAllBays).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bay ids: %w", err)
	}

	bays := make([]*domain.Bay, 0, len(ids))
	for _, id := range ids {
		bay, err := s.GetBay(ctx, id)
		if err != nil {
			// expired or half-deleted entries are skipped
			continue
		}
		bays = append(bays, bay)
	}
	return bays, nil
}

// DeleteBay removes a bay from Redis
func (s *Store) DeleteBay(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, BayKey(id))
		pipe.SRem(ctx, KeyAllBays, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete bay: %w", err)
	}
	return nil
}

// SaveBaysMany stores multiple bays in Redis (bulk operation)
func (s *Store) SaveBaysMany(ctx context.Context, bays []*domain.Bay) error {
	pipe := s.client.Pipeline()

	for _, bay := range bays {
		data, err := json.Marshal(bay)
		if err != nil {
			return fmt.Errorf("failed to marshal bay %s: %w", bay.UUID, err)
		}
		pipe.Set(ctx, BayKey(bay.UUID), data, DefaultBayTTL)
		pipe.SAdd(ctx, KeyAllBays, bay.UUID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save bays: %w", err)
	}
	return nil
}
