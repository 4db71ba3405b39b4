package service

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/rcapi/internal/api"
	"github.com/MrSnakeDoc/rcapi/internal/domain"
	"github.com/MrSnakeDoc/rcapi/internal/logger"
	"github.com/MrSnakeDoc/rcapi/internal/manifest"
)

// ManifestLoader turns rc_data or rc_definition_url into manifest values.
type ManifestLoader interface {
	Load(ctx context.Context, rcData, definitionURL string) (*manifest.Summary, error)
}

// Scope tells an operation where the controller is mounted.
type Scope struct {
	// Nested is set under /rcs/{uuid}/rcs and /bays/{uuid}/rcs. Only
	// plain listings are allowed there.
	Nested bool
	// BayUUID restricts listings to one bay.
	BayUUID string
	// ParentRC is the controller a /rcs/{uuid}/rcs listing hangs off.
	ParentRC string
}

// collectionPath is the resource path of the listing itself, so next
// links stay under the same parent and filter.
func (sc Scope) collectionPath() string {
	switch {
	case sc.BayUUID != "":
		return "bays/" + sc.BayUUID + "/" + api.ResourceRCs
	case sc.ParentRC != "":
		return api.ResourceRCs + "/" + sc.ParentRC + "/" + api.ResourceRCs
	default:
		return api.ResourceRCs
	}
}

// ListParams are the raw listing query parameters.
type ListParams struct {
	Limit   *int
	Marker  string
	SortKey string
	SortDir string
}

// Service runs replication controller requests against the store.
type Service struct {
	store    domain.Store
	bays     domain.BayLookup
	manifest ManifestLoader
	maxLimit int
	log      logger.Logger
}

// New creates a service. manifests may be nil, in which case rc_data and
// rc_definition_url are stored without being read.
func New(store domain.Store, bays domain.BayLookup, manifests ManifestLoader, maxLimit int, log logger.Logger) *Service {
	return &Service{
		store:    store,
		bays:     bays,
		manifest: manifests,
		maxLimit: maxLimit,
		log:      log,
	}
}

func (s *Service) resolver() *api.Resolver {
	return &api.Resolver{RCs: s.store, Bays: s.bays}
}

// List returns a collapsed page.
func (s *Service) List(ctx context.Context, scope Scope, p ListParams, base string) (*api.Collection, error) {
	return s.collection(ctx, scope, p, base, false, scope.collectionPath())
}

// Detail returns an expanded page. It only exists on the top-level collection.
func (s *Service) Detail(ctx context.Context, scope Scope, p ListParams, base string) (*api.Collection, error) {
	if scope.Nested {
		return nil, &domain.OperationNotPermittedError{Op: "detail"}
	}
	return s.collection(ctx, scope, p, base, true, scope.collectionPath()+"/detail")
}

func (s *Service) collection(ctx context.Context, scope Scope, p ListParams, base string, expand bool, resourceURL string) (*api.Collection, error) {
	limit, err := api.ValidateLimit(p.Limit, s.maxLimit)
	if err != nil {
		return nil, err
	}
	if p.SortDir == "" {
		p.SortDir = domain.SortAsc
	}
	sortDir, err := api.ValidateSortDir(p.SortDir)
	if err != nil {
		return nil, err
	}
	sortKey := p.SortKey
	if sortKey == "" {
		sortKey = domain.DefaultSortKey
	}

	if scope.BayUUID != "" {
		if _, err := s.bays.GetBay(ctx, scope.BayUUID); err != nil {
			return nil, err
		}
	}

	var marker *domain.ReplicationController
	if p.Marker != "" {
		marker, err = s.store.GetByUUID(ctx, p.Marker)
		if err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.Invalidf("invalid marker: %v", err)
			}
			return nil, err
		}
	}

	// one extra record tells whether another page exists
	records, err := s.store.List(ctx, domain.ListOptions{
		Limit:   limit + 1,
		Marker:  marker,
		SortKey: sortKey,
		SortDir: sortDir,
		BayUUID: scope.BayUUID,
	})
	if err != nil {
		return nil, err
	}

	return api.NewCollection(records, api.PageParams{
		Limit:   limit,
		SortKey: sortKey,
		SortDir: sortDir,
	}, base, resourceURL, expand), nil
}

// Get returns one controller in full.
func (s *Service) Get(ctx context.Context, scope Scope, uuid, base string) (*api.ReplicationController, error) {
	if scope.Nested {
		return nil, &domain.OperationNotPermittedError{Op: "get"}
	}
	rc, err := s.store.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return api.ConvertWithLinks(rc, base, true), nil
}

// Create stores a new controller built from the request body.
//
// Client timestamps are ignored. Attributes the body leaves empty are taken
// from the manifest in rc_data or behind rc_definition_url.
func (s *Service) Create(ctx context.Context, scope Scope, body map[string]any, base string) (*api.ReplicationController, error) {
	if scope.Nested {
		return nil, &domain.OperationNotPermittedError{Op: "create"}
	}

	delete(body, domain.FieldCreatedAt)
	delete(body, domain.FieldUpdatedAt)

	rep, err := api.New(ctx, s.resolver(), body)
	if err != nil {
		return nil, err
	}
	rec, err := rep.ToDomain()
	if err != nil {
		return nil, &domain.ValidationError{Msg: "invalid replication controller", Err: err}
	}
	rec.ID = 0

	if s.manifest != nil {
		summary, err := s.manifest.Load(ctx, rec.RCData, rec.RCDefinitionURL)
		if err != nil {
			return nil, err
		}
		if summary != nil {
			summary.Fill(rec, rep.Replicas.IsSet())
			s.log.Debug("manifest applied", logger.String("manifest", summary.String()))
		}
	}

	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}

	s.log.Info("replication controller created",
		logger.String("rc_uuid", created.UUID),
		logger.String("bay_uuid", created.BayUUID),
		logger.Int("replicas", created.Replicas))

	return api.ConvertWithLinks(created, base, true), nil
}

// Patch applies a JSON patch document. Only changed fields are written;
// a patch that changes nothing does not touch the store.
func (s *Service) Patch(ctx context.Context, scope Scope, uuid string, ops []api.PatchOp, base string) (*api.ReplicationController, error) {
	if scope.Nested {
		return nil, &domain.OperationNotPermittedError{Op: "patch"}
	}

	current, err := s.store.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	updated, changed, err := api.Merge(ctx, s.resolver(), current, ops)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return api.ConvertWithLinks(current, base, true), nil
	}

	saved, err := s.store.Save(ctx, updated)
	if err != nil {
		var ce *domain.ConflictError
		if errors.As(err, &ce) {
			s.log.Warn("concurrent update rejected", logger.String("rc_uuid", uuid))
		}
		return nil, err
	}

	s.log.Info("replication controller updated",
		logger.String("rc_uuid", saved.UUID),
		logger.Strings("fields", changed))

	return api.ConvertWithLinks(saved, base, true), nil
}

// Delete removes a controller.
func (s *Service) Delete(ctx context.Context, scope Scope, uuid string) error {
	if scope.Nested {
		return &domain.OperationNotPermittedError{Op: "delete"}
	}

	rc, err := s.store.GetByUUID(ctx, uuid)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, rc); err != nil {
		return err
	}

	s.log.Info("replication controller deleted", logger.String("rc_uuid", uuid))
	return nil
}
