package domain

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Domain field names, in the order they are persisted.
const (
	FieldID              = "id"
	FieldUUID            = "uuid"
	FieldName            = "name"
	FieldImages          = "images"
	FieldBayUUID         = "bay_uuid"
	FieldSelector        = "selector"
	FieldReplicas        = "replicas"
	FieldRCDefinitionURL = "rc_definition_url"
	FieldRCData          = "rc_data"
	FieldCreatedAt       = "created_at"
	FieldUpdatedAt       = "updated_at"
)

// Fields lists every persisted ReplicationController attribute.
var Fields = []string{
	FieldID,
	FieldUUID,
	FieldName,
	FieldImages,
	FieldBayUUID,
	FieldSelector,
	FieldReplicas,
	FieldRCDefinitionURL,
	FieldRCData,
	FieldCreatedAt,
	FieldUpdatedAt,
}

// ReplicationController is the canonical persisted record of a
// replication controller.
//
// It is owned by the store. The API layer only ever sees it through
// api.ReplicationController, which never exposes ID or Version.
type ReplicationController struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the surrogate key assigned by the store on Create.
	ID int64 `json:"id"`

	// UUID is the public identifier.
	UUID string `json:"uuid"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	Name     string            `json:"name,omitempty"`
	Images   []string          `json:"images,omitempty"`
	BayUUID  string            `json:"bay_uuid,omitempty"`
	Selector map[string]string `json:"selector,omitempty"`
	Replicas int               `json:"replicas"`

	// ─────────────────────────────
	// Creation inputs (never updated after create)
	// ─────────────────────────────

	RCDefinitionURL string `json:"rc_definition_url,omitempty"`
	RCData          string `json:"rc_data,omitempty"`

	// ─────────────────────────────
	// Bookkeeping
	// ─────────────────────────────

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`

	// Version is bumped by the store on every successful Save.
	Version int64 `json:"version"`
}

// Clone returns a deep copy so callers can stage mutations without
// touching the original.
func (rc *ReplicationController) Clone() *ReplicationController {
	cp := *rc
	cp.Images = slices.Clone(rc.Images)
	cp.Selector = maps.Clone(rc.Selector)
	return &cp
}

// Get returns the value of a domain field in its JSON-compatible form.
// Zero values come back as nil so "never set" and "cleared" compare equal.
func (rc *ReplicationController) Get(field string) (any, error) {
	switch field {
	case FieldID:
		return rc.ID, nil
	case FieldUUID:
		return nilIfEmpty(rc.UUID), nil
	case FieldName:
		return nilIfEmpty(rc.Name), nil
	case FieldImages:
		if rc.Images == nil {
			return nil, nil
		}
		return slices.Clone(rc.Images), nil
	case FieldBayUUID:
		return nilIfEmpty(rc.BayUUID), nil
	case FieldSelector:
		if rc.Selector == nil {
			return nil, nil
		}
		return maps.Clone(rc.Selector), nil
	case FieldReplicas:
		return rc.Replicas, nil
	case FieldRCDefinitionURL:
		return nilIfEmpty(rc.RCDefinitionURL), nil
	case FieldRCData:
		return nilIfEmpty(rc.RCData), nil
	case FieldCreatedAt:
		if rc.CreatedAt.IsZero() {
			return nil, nil
		}
		return rc.CreatedAt, nil
	case FieldUpdatedAt:
		if rc.UpdatedAt.IsZero() {
			return nil, nil
		}
		return rc.UpdatedAt, nil
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
}

// Set assigns a domain field. A nil value resets the field to its zero value.
func (rc *ReplicationController) Set(field string, value any) error {
	switch field {
	case FieldID:
		v, ok := value.(int64)
		if value != nil && !ok {
			return fieldTypeError(field, value)
		}
		rc.ID = v
	case FieldUUID:
		return setString(&rc.UUID, field, value)
	case FieldName:
		return setString(&rc.Name, field, value)
	case FieldImages:
		v, ok := value.([]string)
		if value != nil && !ok {
			return fieldTypeError(field, value)
		}
		rc.Images = slices.Clone(v)
	case FieldBayUUID:
		return setString(&rc.BayUUID, field, value)
	case FieldSelector:
		v, ok := value.(map[string]string)
		if value != nil && !ok {
			return fieldTypeError(field, value)
		}
		rc.Selector = maps.Clone(v)
	case FieldReplicas:
		v, ok := value.(int)
		if value != nil && !ok {
			return fieldTypeError(field, value)
		}
		rc.Replicas = v
	case FieldRCDefinitionURL:
		return setString(&rc.RCDefinitionURL, field, value)
	case FieldRCData:
		return setString(&rc.RCData, field, value)
	case FieldCreatedAt:
		return setTime(&rc.CreatedAt, field, value)
	case FieldUpdatedAt:
		return setTime(&rc.UpdatedAt, field, value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// AsMap returns the record as a flat field -> value mapping.
func (rc *ReplicationController) AsMap() map[string]any {
	out := make(map[string]any, len(Fields))
	for _, f := range Fields {
		v, _ := rc.Get(f)
		out[f] = v
	}
	return out
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func setString(dst *string, field string, value any) error {
	if value == nil {
		*dst = ""
		return nil
	}
	v, ok := value.(string)
	if !ok {
		return fieldTypeError(field, value)
	}
	*dst = v
	return nil
}

func setTime(dst *time.Time, field string, value any) error {
	if value == nil {
		*dst = time.Time{}
		return nil
	}
	v, ok := value.(time.Time)
	if !ok {
		return fieldTypeError(field, value)
	}
	*dst = v
	return nil
}

func fieldTypeError(field string, value any) error {
	return fmt.Errorf("field %q: unexpected type %T", field, value)
}
