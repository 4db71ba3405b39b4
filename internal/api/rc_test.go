package api

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

func TestOptStates(t *testing.T) {
	tests := []struct {
		name      string
		opt       Opt[string]
		wantUnset bool
		wantNull  bool
		wantJSON  string
	}{
		{name: "unset", opt: Unset[string](), wantUnset: true, wantJSON: "null"},
		{name: "null", opt: Null[string](), wantNull: true, wantJSON: "null"},
		{name: "set", opt: Some("x"), wantJSON: `"x"`},
		{name: "set empty", opt: Some(""), wantJSON: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opt.IsUnset() != tt.wantUnset {
				t.Errorf("IsUnset() = %v, want %v", tt.opt.IsUnset(), tt.wantUnset)
			}
			if tt.opt.IsNull() != tt.wantNull {
				t.Errorf("IsNull() = %v, want %v", tt.opt.IsNull(), tt.wantNull)
			}
			b, err := json.Marshal(tt.opt)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(b) != tt.wantJSON {
				t.Errorf("Marshal = %s, want %s", b, tt.wantJSON)
			}
		})
	}
}

func TestNewAssignsOrUnsets(t *testing.T) {
	res, _, _ := newResolver()
	r, err := New(context.Background(), res, map[string]any{
		"name":     "web",
		"images":   []any{"nginx", "redis"},
		"bay_uuid": bayA,
		"selector": map[string]any{"app": "web"},
		"replicas": json.Number("3"),
		"rc_data":  nil,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got, _ := r.Name.Get(); got != "web" {
		t.Errorf("Name = %q, want web", got)
	}
	if diff := cmp.Diff([]string{"nginx", "redis"}, r.Images.OrZero()); diff != "" {
		t.Errorf("Images mismatch (-want +got):\n%s", diff)
	}
	if got, _ := r.Replicas.Get(); got != 3 {
		t.Errorf("Replicas = %d, want 3", got)
	}
	if !r.RCData.IsNull() {
		t.Error("rc_data was sent as null and must stay distinguishable from unset")
	}
	if !r.RCDefinitionURL.IsUnset() {
		t.Error("rc_definition_url was not sent and must be unset")
	}
	if !r.UUID.IsUnset() || !r.RCUUID().IsUnset() || !r.RCID.IsUnset() {
		t.Error("absent identity fields must be unset")
	}

	fields := r.Fields()
	for _, want := range []string{"uuid", "bay_uuid", "rc_uuid", "rc_id"} {
		if !slices.Contains(fields, want) {
			t.Errorf("Fields() missing %q: %v", want, fields)
		}
	}
	if slices.Contains(fields, "id") {
		t.Error("Fields() must not expose the surrogate id")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
	}{
		{name: "unknown attribute", in: map[string]any{"color": "blue"}},
		{name: "links are read-only", in: map[string]any{"links": []any{}}},
		{name: "replicas not a number", in: map[string]any{"replicas": "many"}},
		{name: "replicas numeric string", in: map[string]any{"replicas": "3"}},
		{name: "replicas fractional", in: map[string]any{"replicas": 1.5}},
		{name: "replicas negative", in: map[string]any{"replicas": json.Number("-1")}},
		{name: "images not strings", in: map[string]any{"images": []any{1, 2}}},
		{name: "selector not strings", in: map[string]any{"selector": map[string]any{"a": 1}}},
		{name: "uuid malformed", in: map[string]any{"uuid": "not-a-uuid"}},
		{name: "bay_uuid malformed", in: map[string]any{"bay_uuid": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, _ := newResolver()
			_, err := New(context.Background(), res, tt.in)
			if !domain.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestFromDomainNoLookups(t *testing.T) {
	r := FromDomain(sampleRecord())

	if got, _ := r.BayUUID.Get(); got != bayA {
		t.Errorf("BayUUID = %q, want %q", got, bayA)
	}
	if !r.RCUUID().IsUnset() || !r.RCID.IsUnset() {
		t.Error("FromDomain must not populate rc_uuid/rc_id")
	}

	back, err := r.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	want := sampleRecord()
	want.ID, want.Version = 0, 0
	if diff := cmp.Diff(want, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnsetFieldsExcept(t *testing.T) {
	r := FromDomain(sampleRecord())
	r.RCID = Some(int64(1))
	r.UnsetFieldsExcept(CollapsedFields...)

	got := r.AsMap()
	for k := range got {
		if !slices.Contains(CollapsedFields, k) {
			t.Errorf("collapsed view still carries %q", k)
		}
	}
	if len(got) != len(CollapsedFields) {
		t.Errorf("collapsed view has %d fields, want %d", len(got), len(CollapsedFields))
	}
}

func TestMarshalNeverEmitsRCID(t *testing.T) {
	res, _, _ := newResolver()
	r, err := New(context.Background(), res, map[string]any{
		"name":    "web",
		"rc_uuid": rcOne,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !r.RCID.IsSet() {
		t.Fatal("resolver should have populated rc_id")
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(b), "rc_id") {
		t.Errorf("serialized representation leaks rc_id: %s", b)
	}
	if strings.Contains(string(b), "rc_data") {
		t.Errorf("unset fields must be omitted: %s", b)
	}
}

func TestMarshalNullVsUnset(t *testing.T) {
	r := &ReplicationController{
		Name:   Null[string](),
		Images: Some([]string{"a"}),
	}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v, ok := got["name"]; !ok || v != nil {
		t.Errorf("name should be present as null, got %v (present=%v)", v, ok)
	}
	if _, ok := got["uuid"]; ok {
		t.Error("unset uuid should be omitted")
	}
}
