package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

// Store handles Redis operations for replication controllers and bays
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the connection; used by the readiness probe
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetByUUID retrieves a replication controller by UUID
func (s *Store) GetByUUID(ctx context.Context, id string) (*domain.ReplicationController, error) {
	data, err := s.client.Get(ctx, RCKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &domain.NotFoundError{Resource: "replication controller", ID: id}
		}
		return nil, fmt.Errorf("failed to get replication controller: %w", err)
	}
	return decodeRC(data)
}

// List returns one page of replication controllers.
//
// Pages ordered by id are read straight off the sorted index. Any other
// ordering or a bay filter loads every record and pages in memory.
func (s *Store) List(ctx context.Context, opts domain.ListOptions) ([]*domain.ReplicationController, error) {
	opts, err := domain.ValidateListOptions(opts)
	if err != nil {
		return nil, err
	}

	if opts.SortKey == domain.FieldID && opts.BayUUID == "" {
		return s.listByID(ctx, opts)
	}

	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Paginate(all, opts)
}

func (s *Store) listByID(ctx context.Context, opts domain.ListOptions) ([]*domain.ReplicationController, error) {
	rng := &redis.ZRangeBy{Min: "-inf", Max: "+inf", Count: int64(opts.Limit)}

	var cmd *redis.StringSliceCmd
	if opts.SortDir == domain.SortDesc {
		if opts.Marker != nil {
			rng.Max = "(" + strconv.FormatInt(opts.Marker.ID, 10)
		}
		cmd = s.client.ZRevRangeByScore(ctx, KeyRCsByID, rng)
	} else {
		if opts.Marker != nil {
			rng.Min = "(" + strconv.FormatInt(opts.Marker.ID, 10)
		}
		cmd = s.client.ZRangeByScore(ctx, KeyRCsByID, rng)
	}

	uuids, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read replication controller index: %w", err)
	}
	return s.getMany(ctx, uuids)
}

func (s *Store) loadAll(ctx context.Context) ([]*domain.ReplicationController, error) {
	uuids, err := s.client.ZRange(ctx, KeyRCsByID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read replication controller index: %w", err)
	}
	return s.getMany(ctx, uuids)
}

// getMany fetches records in the given order, skipping index entries
// whose record vanished in between.
func (s *Store) getMany(ctx context.Context, uuids []string) ([]*domain.ReplicationController, error) {
	if len(uuids) == 0 {
		return []*domain.ReplicationController{}, nil
	}

	keys := make([]string, 0, len(uuids))
	for _, id := range uuids {
		keys = append(keys, RCKey(id))
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get replication controllers: %w", err)
	}

	out := make([]*domain.ReplicationController, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		rc, err := decodeRC([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, nil
}

// Create assigns id, uuid (when absent) and timestamps, then stores the record
func (s *Store) Create(ctx context.Context, rc *domain.ReplicationController) (*domain.ReplicationController, error) {
	rec := rc.Clone()
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
	}

	id, err := s.client.Incr(ctx, KeyRCSeq).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate id: %w", err)
	}
	rec.ID = id
	rec.CreatedAt = s.now()
	rec.UpdatedAt = time.Time{}
	rec.Version = 1

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal replication controller: %w", err)
	}

	created, err := s.client.SetNX(ctx, RCKey(rec.UUID), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to save replication controller: %w", err)
	}
	if !created {
		return nil, &domain.ConflictError{UUID: rec.UUID}
	}

	if err := s.client.ZAdd(ctx, KeyRCsByID, redis.Z{Score: float64(id), Member: rec.UUID}).Err(); err != nil {
		return nil, fmt.Errorf("failed to index replication controller: %w", err)
	}

	return rec, nil
}

// Save replaces a record if nobody else saved it since it was read.
// The record key is watched so a concurrent write aborts the transaction.
func (s *Store) Save(ctx context.Context, rc *domain.ReplicationController) (*domain.ReplicationController, error) {
	key := RCKey(rc.UUID)
	var saved *domain.ReplicationController

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return &domain.NotFoundError{Resource: "replication controller", ID: rc.UUID}
			}
			return fmt.Errorf("failed to get replication controller: %w", err)
		}
		cur, err := decodeRC(data)
		if err != nil {
			return err
		}
		if cur.Version != rc.Version {
			return &domain.ConflictError{UUID: rc.UUID}
		}

		rec := rc.Clone()
		rec.ID = cur.ID
		rec.CreatedAt = cur.CreatedAt
		rec.UpdatedAt = s.now()
		rec.Version = cur.Version + 1

		out, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal replication controller: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}
		saved = rec
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, &domain.ConflictError{UUID: rc.UUID}
	}
	if err != nil {
		var nf *domain.NotFoundError
		var ce *domain.ConflictError
		if errors.As(err, &nf) || errors.As(err, &ce) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save replication controller: %w", err)
	}
	return saved, nil
}

// Delete removes a record and its index entry
func (s *Store) Delete(ctx context.Context, rc *domain.ReplicationController) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, RCKey(rc.UUID))
		pipe.ZRem(ctx, KeyRCsByID, rc.UUID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete replication controller: %w", err)
	}
	if del.Val() == 0 {
		return &domain.NotFoundError{Resource: "replication controller", ID: rc.UUID}
	}
	return nil
}

// RebuildIndex adds every stored record missing from the id index and
// drops index entries whose record is gone. It returns how many entries
// were changed.
func (s *Store) RebuildIndex(ctx context.Context) (int, error) {
	indexed, err := s.client.ZRange(ctx, KeyRCsByID, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read replication controller index: %w", err)
	}
	stale := make(map[string]bool, len(indexed))
	for _, id := range indexed {
		stale[id] = true
	}

	fixed := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixRC+"*", 0).Iterator()
	for iter.Next(ctx) {
		id, err := ExtractRCUUID(iter.Val())
		if err != nil {
			continue
		}
		if stale[id] {
			delete(stale, id)
			continue
		}

		rc, err := s.GetByUUID(ctx, id)
		if err != nil {
			return fixed, err
		}
		if err := s.client.ZAdd(ctx, KeyRCsByID, redis.Z{Score: float64(rc.ID), Member: id}).Err(); err != nil {
			return fixed, fmt.Errorf("failed to index replication controller: %w", err)
		}
		fixed++
	}
	if err := iter.Err(); err != nil {
		return fixed, fmt.Errorf("failed to scan replication controllers: %w", err)
	}

	for id := range stale {
		if err := s.client.ZRem(ctx, KeyRCsByID, id).Err(); err != nil {
			return fixed, fmt.Errorf("failed to drop index entry: %w", err)
		}
		fixed++
	}
	return fixed, nil
}

func decodeRC(data []byte) (*domain.ReplicationController, error) {
	var rc domain.ReplicationController
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal replication controller: %w", err)
	}
	return &rc, nil
}
