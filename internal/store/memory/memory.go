package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

// Store keeps replication controllers and bays in process memory.
// It is used with RCAPI_STORE=memory and as the test double for the service.
// Records are cloned on the way in and out so callers never share state
// with the store.
type Store struct {
	mu            sync.RWMutex
	rcs           map[string]*domain.ReplicationController // UUID -> record
	bays          map[string]*domain.Bay                   // UUID -> bay
	nextID        int64
	lastBayReload time.Time

	now func() time.Time
}

// NewStore creates an empty memory store
func NewStore() *Store {
	return &Store{
		rcs:  make(map[string]*domain.ReplicationController),
		bays: make(map[string]*domain.Bay),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// GetByUUID retrieves a replication controller by UUID
func (s *Store) GetByUUID(_ context.Context, id string) (*domain.ReplicationController, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rc, ok := s.rcs[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "replication controller", ID: id}
	}
	return rc.Clone(), nil
}

// List returns one page of replication controllers
func (s *Store) List(_ context.Context, opts domain.ListOptions) ([]*domain.ReplicationController, error) {
	s.mu.RLock()
	all := make([]*domain.ReplicationController, 0, len(s.rcs))
	for _, rc := range s.rcs {
		all = append(all, rc)
	}
	s.mu.RUnlock()

	page, err := domain.Paginate(all, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ReplicationController, 0, len(page))
	for _, rc := range page {
		out = append(out, rc.Clone())
	}
	return out, nil
}

// Create assigns id, uuid (when absent) and timestamps, then stores the record
func (s *Store) Create(_ context.Context, rc *domain.ReplicationController) (*domain.ReplicationController, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := rc.Clone()
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
	}
	if _, exists := s.rcs[rec.UUID]; exists {
		return nil, &domain.ConflictError{UUID: rec.UUID}
	}

	s.nextID++
	rec.ID = s.nextID
	rec.CreatedAt = s.now()
	rec.UpdatedAt = time.Time{}
	rec.Version = 1

	s.rcs[rec.UUID] = rec
	return rec.Clone(), nil
}

// Save replaces a record if nobody else saved it since it was read
func (s *Store) Save(_ context.Context, rc *domain.ReplicationController) (*domain.ReplicationController, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.rcs[rc.UUID]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "replication controller", ID: rc.UUID}
	}
	if cur.Version != rc.Version {
		return nil, &domain.ConflictError{UUID: rc.UUID}
	}

	rec := rc.Clone()
	rec.ID = cur.ID
	rec.CreatedAt = cur.CreatedAt
	rec.UpdatedAt = s.now()
	rec.Version = cur.Version + 1

	s.rcs[rec.UUID] = rec
	return rec.Clone(), nil
}

// Delete removes a record
func (s *Store) Delete(_ context.Context, rc *domain.ReplicationController) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rcs[rc.UUID]; !ok {
		return &domain.NotFoundError{Resource: "replication controller", ID: rc.UUID}
	}
	delete(s.rcs, rc.UUID)
	return nil
}

// Count returns the number of replication controllers
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rcs)
}

// ─────────────────────────────────────────────────────────────────
// Bay methods
// ─────────────────────────────────────────────────────────────────

// GetBay retrieves a bay by UUID
func (s *Store) GetBay(_ context.Context, id string) (*domain.Bay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bay, ok := s.bays[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "bay", ID: id}
	}
	cp := *bay
	return &cp, nil
}

// SaveBaysMany upserts bays
func (s *Store) SaveBaysMany(_ context.Context, bays []*domain.Bay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, bay := range bays {
		cp := *bay
		s.bays[bay.UUID] = &cp
	}
	s.lastBayReload = s.now()
	return nil
}

// GetAllBays returns all bays
func (s *Store) GetAllBays(_ context.Context) ([]*domain.Bay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bays := make([]*domain.Bay, 0, len(s.bays))
	for _, bay := range s.bays {
		cp := *bay
		bays = append(bays, &cp)
	}
	return bays, nil
}

// DeleteBay removes a bay
func (s *Store) DeleteBay(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bays, id)
	return nil
}

// GetLastBayReload returns when bays were last written
func (s *Store) GetLastBayReload() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastBayReload
}
