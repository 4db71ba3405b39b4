package domain

import "context"

// Sort directions accepted by List.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// DefaultSortKey is used when the caller does not pick one.
const DefaultSortKey = FieldID

// ListOptions drives marker pagination.
//
// Marker is the last record of the previous page (already resolved by the
// caller). Pages are only stable when SortKey is unique and immutable; for
// the other keys ties are broken by ID, but a record whose key changes
// between two page fetches can still be skipped or repeated.
type ListOptions struct {
	Limit   int
	Marker  *ReplicationController
	SortKey string
	SortDir string
	BayUUID string // optional filter
}

// Store persists replication controllers.
//
// Each call is atomic on its own; nothing spans calls. Save detects a
// concurrent writer through ReplicationController.Version and returns a
// ConflictError instead of overwriting.
type Store interface {
	GetByUUID(ctx context.Context, uuid string) (*ReplicationController, error)
	List(ctx context.Context, opts ListOptions) ([]*ReplicationController, error)
	Create(ctx context.Context, rc *ReplicationController) (*ReplicationController, error)
	Save(ctx context.Context, rc *ReplicationController) (*ReplicationController, error)
	Delete(ctx context.Context, rc *ReplicationController) error
}

// BayLookup resolves bay references.
type BayLookup interface {
	GetBay(ctx context.Context, uuid string) (*Bay, error)
}

// BayWriter is implemented by stores that accept bay inventory updates.
type BayWriter interface {
	SaveBaysMany(ctx context.Context, bays []*Bay) error
	GetAllBays(ctx context.Context) ([]*Bay, error)
	DeleteBay(ctx context.Context, uuid string) error
}
