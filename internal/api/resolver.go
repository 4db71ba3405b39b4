package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

// RCGetter is the part of domain.Store the resolver needs.
type RCGetter interface {
	GetByUUID(ctx context.Context, uuid string) (*domain.ReplicationController, error)
}

// Resolver checks UUID references while a representation is being
// assigned. A reference that does not exist is the client's mistake, so
// not-found is reported as a ValidationError rather than a NotFoundError.
type Resolver struct {
	RCs  RCGetter
	Bays domain.BayLookup
}

// SetRCUUID assigns the rc_uuid alias. A new non-empty value is looked up
// and, on success, canonicalised and mirrored into RCID.
func (res *Resolver) SetRCUUID(ctx context.Context, r *ReplicationController, v Opt[string]) error {
	if v.IsUnset() {
		r.rcUUID = v
		return nil
	}
	val, ok := v.Get()
	if !ok || val == "" {
		r.rcUUID = Null[string]()
		return nil
	}
	if cur, ok := r.rcUUID.Get(); ok && cur == val {
		return nil
	}
	if err := validUUID(FieldRCUUID, val); err != nil {
		return err
	}
	if res == nil || res.RCs == nil {
		return domain.Invalidf("cannot resolve %s %s", FieldRCUUID, val)
	}

	rc, err := res.RCs.GetByUUID(ctx, val)
	if err != nil {
		return remapNotFound(err)
	}
	r.rcUUID = Some(rc.UUID)
	r.RCID = Some(rc.ID)
	return nil
}

// SetBayUUID assigns the bay_uuid foreign key with the same rules as
// SetRCUUID, resolved against the bay inventory.
func (res *Resolver) SetBayUUID(ctx context.Context, r *ReplicationController, v Opt[string]) error {
	if v.IsUnset() {
		r.BayUUID = v
		return nil
	}
	val, ok := v.Get()
	if !ok || val == "" {
		r.BayUUID = Null[string]()
		return nil
	}
	if cur, ok := r.BayUUID.Get(); ok && cur == val {
		return nil
	}
	if err := validUUID(domain.FieldBayUUID, val); err != nil {
		return err
	}
	if res == nil || res.Bays == nil {
		return domain.Invalidf("cannot resolve %s %s", domain.FieldBayUUID, val)
	}

	bay, err := res.Bays.GetBay(ctx, val)
	if err != nil {
		return remapNotFound(err)
	}
	r.BayUUID = Some(bay.UUID)
	return nil
}

func validUUID(field, val string) error {
	if _, err := uuid.Parse(val); err != nil {
		return &domain.ValidationError{Msg: "invalid " + field, Err: err}
	}
	return nil
}

// remapNotFound turns a lookup miss into a client error; anything else
// (store unavailable, ...) is passed through untouched. The NotFoundError
// is not kept in the chain so callers cannot mistake it for a 404.
func remapNotFound(err error) error {
	if domain.IsNotFound(err) {
		return &domain.ValidationError{Msg: err.Error()}
	}
	return err
}
