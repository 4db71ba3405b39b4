package api

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

// API-only field names.
const (
	FieldRCUUID = "rc_uuid"
	FieldRCID   = "rc_id"
	FieldLinks  = "links"
)

// CollapsedFields is the view used by list endpoints.
var CollapsedFields = []string{
	domain.FieldUUID,
	domain.FieldName,
	domain.FieldImages,
	domain.FieldBayUUID,
	domain.FieldSelector,
	domain.FieldReplicas,
}

// exposedFields are the domain attributes the API knows about. The
// surrogate id is deliberately absent.
var exposedFields = []string{
	domain.FieldUUID,
	domain.FieldName,
	domain.FieldImages,
	domain.FieldBayUUID,
	domain.FieldSelector,
	domain.FieldReplicas,
	domain.FieldRCDefinitionURL,
	domain.FieldRCData,
	domain.FieldCreatedAt,
	domain.FieldUpdatedAt,
}

// ReplicationController is the wire representation of a
// domain.ReplicationController.
//
// Every attribute is an Opt so that a field the client never sent stays
// distinguishable from one it cleared. RCID is a side channel filled by
// the rc_uuid resolver for the API -> domain conversion; it is never
// serialized.
type ReplicationController struct {
	UUID            Opt[string]
	Name            Opt[string]
	Images          Opt[[]string]
	BayUUID         Opt[string]
	Selector        Opt[map[string]string]
	Replicas        Opt[int]
	RCDefinitionURL Opt[string]
	RCData          Opt[string]
	CreatedAt       Opt[time.Time]
	UpdatedAt       Opt[time.Time]

	// Links is computed on the way out and read-only.
	Links []Link

	RCID   Opt[int64]
	rcUUID Opt[string]
}

// Fields returns the attribute names this representation carries: every
// exposed domain field plus the rc_uuid/rc_id pair.
func (r *ReplicationController) Fields() []string {
	out := slices.Clone(exposedFields)
	return append(out, FieldRCUUID, FieldRCID)
}

// RCUUID returns the API-only rc_uuid alias.
func (r *ReplicationController) RCUUID() Opt[string] { return r.rcUUID }

// New builds a representation from an untrusted mapping (client JSON or a
// patched document). Every recognised field is assigned from the mapping
// or left unset; reference fields go through the resolver and that is the
// only way construction can fail besides a type mismatch.
func New(ctx context.Context, res *Resolver, in map[string]any) (*ReplicationController, error) {
	r := &ReplicationController{}
	if err := r.Assign(ctx, res, in); err != nil {
		return nil, err
	}
	return r, nil
}

// FromDomain projects a stored record. No lookups are performed and
// rc_uuid/rc_id stay unset.
func FromDomain(rc *domain.ReplicationController) *ReplicationController {
	r := &ReplicationController{}
	for _, f := range exposedFields {
		v, _ := rc.Get(f)
		// Stored values always have the right type.
		_ = r.assignPlain(f, v, v == nil)
	}
	return r
}

// Assign sets every recognised field from in, or unsets it when absent.
// Keys that are not attributes of the representation are rejected.
func (r *ReplicationController) Assign(ctx context.Context, res *Resolver, in map[string]any) error {
	for k := range in {
		if k == FieldRCID || k == domain.FieldID {
			continue
		}
		if k == FieldLinks {
			return domain.Invalidf("links is a read-only attribute")
		}
		if !slices.Contains(exposedFields, k) && k != FieldRCUUID {
			return domain.Invalidf("unknown attribute for replication controller: %s", k)
		}
	}

	for _, f := range exposedFields {
		v, ok := in[f]
		var err error
		switch f {
		case domain.FieldBayUUID:
			var o Opt[string]
			if o, err = toOpt(f, v, ok, asString); err == nil {
				err = res.SetBayUUID(ctx, r, o)
			}
		default:
			err = r.assignPlain(f, v, !ok)
		}
		if err != nil {
			return err
		}
	}

	v, ok := in[FieldRCUUID]
	o, err := toOpt(FieldRCUUID, v, ok, asString)
	if err != nil {
		return err
	}
	return res.SetRCUUID(ctx, r, o)
}

// assignPlain handles every field that has no side effect on assignment.
func (r *ReplicationController) assignPlain(field string, v any, unset bool) error {
	var err error
	switch field {
	case domain.FieldUUID:
		r.UUID, err = toOpt(field, v, !unset, asUUID)
	case domain.FieldName:
		r.Name, err = toOpt(field, v, !unset, asString)
	case domain.FieldImages:
		r.Images, err = toOpt(field, v, !unset, asStrings)
	case domain.FieldBayUUID:
		r.BayUUID, err = toOpt(field, v, !unset, asString)
	case domain.FieldSelector:
		r.Selector, err = toOpt(field, v, !unset, asStringMap)
	case domain.FieldReplicas:
		r.Replicas, err = toOpt(field, v, !unset, asReplicas)
	case domain.FieldRCDefinitionURL:
		r.RCDefinitionURL, err = toOpt(field, v, !unset, asString)
	case domain.FieldRCData:
		r.RCData, err = toOpt(field, v, !unset, asString)
	case domain.FieldCreatedAt:
		r.CreatedAt, err = toOpt(field, v, !unset, asTime)
	case domain.FieldUpdatedAt:
		r.UpdatedAt, err = toOpt(field, v, !unset, asTime)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return err
}

// UnsetFieldsExcept collapses the representation to the given subset.
func (r *ReplicationController) UnsetFieldsExcept(keep ...string) {
	for _, f := range r.Fields() {
		if slices.Contains(keep, f) {
			continue
		}
		switch f {
		case FieldRCUUID:
			r.rcUUID = Unset[string]()
		case FieldRCID:
			r.RCID = Unset[int64]()
		default:
			_ = r.assignPlain(f, nil, true)
		}
	}
}

// Value returns a field in domain form: nil for null and unset.
func (r *ReplicationController) Value(field string) any {
	switch field {
	case domain.FieldUUID:
		return r.UUID.Any()
	case domain.FieldName:
		return r.Name.Any()
	case domain.FieldImages:
		return r.Images.Any()
	case domain.FieldBayUUID:
		return r.BayUUID.Any()
	case domain.FieldSelector:
		return r.Selector.Any()
	case domain.FieldReplicas:
		return r.Replicas.Any()
	case domain.FieldRCDefinitionURL:
		return r.RCDefinitionURL.Any()
	case domain.FieldRCData:
		return r.RCData.Any()
	case domain.FieldCreatedAt:
		return r.CreatedAt.Any()
	case domain.FieldUpdatedAt:
		return r.UpdatedAt.Any()
	case FieldRCUUID:
		return r.rcUUID.Any()
	case FieldRCID:
		return r.RCID.Any()
	}
	return nil
}

// isUnset reports whether a field carries the unset sentinel.
func (r *ReplicationController) isUnset(field string) bool {
	switch field {
	case domain.FieldUUID:
		return r.UUID.IsUnset()
	case domain.FieldName:
		return r.Name.IsUnset()
	case domain.FieldImages:
		return r.Images.IsUnset()
	case domain.FieldBayUUID:
		return r.BayUUID.IsUnset()
	case domain.FieldSelector:
		return r.Selector.IsUnset()
	case domain.FieldReplicas:
		return r.Replicas.IsUnset()
	case domain.FieldRCDefinitionURL:
		return r.RCDefinitionURL.IsUnset()
	case domain.FieldRCData:
		return r.RCData.IsUnset()
	case domain.FieldCreatedAt:
		return r.CreatedAt.IsUnset()
	case domain.FieldUpdatedAt:
		return r.UpdatedAt.IsUnset()
	case FieldRCUUID:
		return r.rcUUID.IsUnset()
	case FieldRCID:
		return r.RCID.IsUnset()
	}
	return true
}

// AsMap returns every field that is not unset, including rc_id, so the
// result carries enough to build a domain record. Links are not included.
func (r *ReplicationController) AsMap() map[string]any {
	out := make(map[string]any)
	for _, f := range r.Fields() {
		if r.isUnset(f) {
			continue
		}
		out[f] = r.Value(f)
	}
	return out
}

// ToDomain builds a new domain record from the populated fields.
func (r *ReplicationController) ToDomain() (*domain.ReplicationController, error) {
	rc := &domain.ReplicationController{}
	for f, v := range r.AsMap() {
		switch f {
		case FieldRCUUID:
			continue
		case FieldRCID:
			f = domain.FieldID
		}
		if err := rc.Set(f, v); err != nil {
			return nil, err
		}
	}
	return rc, nil
}

type wireRC struct {
	UUID            Opt[string]            `json:"uuid,omitzero"`
	Name            Opt[string]            `json:"name,omitzero"`
	Images          Opt[[]string]          `json:"images,omitzero"`
	BayUUID         Opt[string]            `json:"bay_uuid,omitzero"`
	Selector        Opt[map[string]string] `json:"selector,omitzero"`
	Replicas        Opt[int]               `json:"replicas,omitzero"`
	RCDefinitionURL Opt[string]            `json:"rc_definition_url,omitzero"`
	RCData          Opt[string]            `json:"rc_data,omitzero"`
	RCUUID          Opt[string]            `json:"rc_uuid,omitzero"`
	Links           []Link                 `json:"links,omitempty"`
	CreatedAt       Opt[time.Time]         `json:"created_at,omitzero"`
	UpdatedAt       Opt[time.Time]         `json:"updated_at,omitzero"`
}

// MarshalJSON omits unset fields, emits null for cleared ones and never
// emits rc_id.
func (r *ReplicationController) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRC{
		UUID:            r.UUID,
		Name:            r.Name,
		Images:          r.Images,
		BayUUID:         r.BayUUID,
		Selector:        r.Selector,
		Replicas:        r.Replicas,
		RCDefinitionURL: r.RCDefinitionURL,
		RCData:          r.RCData,
		RCUUID:          r.rcUUID,
		Links:           r.Links,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	})
}

// ─────────────────────────────────────────────────────────────────
// Value coercion
// ─────────────────────────────────────────────────────────────────

func toOpt[T any](field string, v any, present bool, conv func(any) (T, bool)) (Opt[T], error) {
	if !present {
		return Unset[T](), nil
	}
	if v == nil {
		return Null[T](), nil
	}
	out, ok := conv(v)
	if !ok {
		return Unset[T](), domain.Invalidf("invalid value for %s: %v", field, v)
	}
	return Some(out), nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asUUID(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", false
	}
	return s, true
}

func asStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t), true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func asStringMap(v any) (map[string]string, bool) {
	switch t := v.(type) {
	case map[string]string:
		return maps.Clone(t), true
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

func asReplicas(v any) (int, bool) {
	var n int64
	switch t := v.(type) {
	case int:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		n = int64(t)
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		return ts, err == nil
	}
	return time.Time{}, false
}
