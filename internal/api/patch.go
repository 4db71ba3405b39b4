package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

// ErrPatch wraps every failure to apply a patch document.
var ErrPatch = errors.New("couldn't apply patch")

// Patch operations accepted on a replication controller.
const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
)

var patchPath = regexp.MustCompile(`^(/[\w-]+)+$`)

// internalAttrs can never be targeted by a patch.
var internalAttrs = []string{"/created_at", "/id", "/links", "/updated_at", "/uuid", "/rc_id"}

// mandatoryAttrs must survive the patch and keep their value.
var mandatoryAttrs = []string{"/rc_uuid"}

// immutableFields are compared between the current and the patched
// document; a difference rejects the whole patch.
var immutableFields = []string{domain.FieldUUID, FieldRCUUID}

// createOnlyFields are only used to create the controller and are left
// alone by Merge whatever the patch says.
var createOnlyFields = []string{domain.FieldRCDefinitionURL, domain.FieldRCData}

// PatchOp is one JSON-Patch operation.
type PatchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Validate checks a single operation before anything is applied.
func (p PatchOp) Validate() error {
	switch p.Op {
	case OpAdd, OpReplace, OpRemove:
	default:
		return domain.Invalidf("invalid patch operation %q", p.Op)
	}
	if !patchPath.MatchString(p.Path) {
		return domain.Invalidf("invalid patch path %q", p.Path)
	}
	if slices.Contains(internalAttrs, p.Path) {
		return domain.Invalidf("'%s' is an internal attribute and can not be updated", p.Path)
	}
	if p.Op == OpRemove && slices.Contains(mandatoryAttrs, p.Path) {
		return domain.Invalidf("'%s' is a mandatory attribute and can not be removed", p.Path)
	}
	if p.Op != OpRemove && p.Value == nil {
		return domain.Invalidf("'add' and 'replace' operations need a value")
	}
	return nil
}

// Mutation is one staged field change.
type Mutation struct {
	Field string
	Value any
}

// Merge applies a patch to current and returns an updated copy plus the
// names of the fields that changed. current itself is never modified, and
// nothing is returned on error, so a failed patch cannot leak into the
// store.
func Merge(ctx context.Context, res *Resolver, current *domain.ReplicationController, ops []PatchOp) (*domain.ReplicationController, []string, error) {
	if len(ops) == 0 {
		return nil, nil, domain.Invalidf("patch document is empty")
	}
	for _, op := range ops {
		if err := op.Validate(); err != nil {
			return nil, nil, err
		}
	}

	doc := patchableDoc(current)
	candidate, err := applyPatch(doc, ops)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range immutableFields {
		if !sameValue(candidate[f], doc[f]) {
			return nil, nil, domain.Invalidf("'%s' is immutable and can not be changed", f)
		}
	}

	rep := FromDomain(current)
	rep.rcUUID = Some(current.UUID)
	rep.RCID = Some(current.ID)
	if err := rep.Assign(ctx, res, candidate); err != nil {
		return nil, nil, err
	}

	staged, err := diff(current, rep)
	if err != nil {
		return nil, nil, err
	}

	updated := current.Clone()
	changed := make([]string, 0, len(staged))
	for _, m := range staged {
		if err := updated.Set(m.Field, m.Value); err != nil {
			return nil, nil, err
		}
		changed = append(changed, m.Field)
	}
	return updated, changed, nil
}

// patchableDoc is the flat mapping the patch runs against: the surrogate
// id is replaced by the rc_uuid alias.
func patchableDoc(rc *domain.ReplicationController) map[string]any {
	doc := rc.AsMap()
	delete(doc, domain.FieldID)
	doc[FieldRCUUID] = rc.UUID
	return doc
}

func applyPatch(doc map[string]any, ops []PatchOp) (map[string]any, error) {
	for _, op := range ops {
		if op.Op != OpAdd || strings.Count(op.Path, "/") != 1 {
			continue
		}
		if _, ok := doc[strings.TrimPrefix(op.Path, "/")]; !ok {
			return nil, domain.Invalidf("adding a new attribute (%s) to the root of the resource is not allowed", op.Path)
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	rawOps, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}

	p, err := jsonpatch.DecodePatch(rawOps)
	if err != nil {
		return nil, &domain.ValidationError{Err: errors.Join(ErrPatch, err)}
	}
	patched, err := p.Apply(raw)
	if err != nil {
		return nil, &domain.ValidationError{Err: errors.Join(ErrPatch, err)}
	}

	dec := json.NewDecoder(bytes.NewReader(patched))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, &domain.ValidationError{Err: errors.Join(ErrPatch, err)}
	}
	return out, nil
}

// diff stages a mutation for every exposed, updatable field whose value
// differs. Unset candidate fields count as null.
func diff(current *domain.ReplicationController, rep *ReplicationController) ([]Mutation, error) {
	var staged []Mutation
	for _, f := range domain.Fields {
		if slices.Contains(createOnlyFields, f) || !slices.Contains(exposedFields, f) {
			continue
		}
		next := rep.Value(f)

		// Normalise through the record so nil and zero values compare equal.
		probe := current.Clone()
		if err := probe.Set(f, next); err != nil {
			return nil, domain.Invalidf("invalid value for %s: %v", f, err)
		}
		before, _ := current.Get(f)
		after, _ := probe.Get(f)
		if sameValue(before, after) {
			continue
		}
		staged = append(staged, Mutation{Field: f, Value: next})
	}
	return staged, nil
}

func sameValue(a, b any) bool {
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if aok && bok {
		return ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}
