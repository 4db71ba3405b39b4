package api

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

func ops(t *testing.T, raw string) []PatchOp {
	t.Helper()
	var out []PatchOp
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("bad test patch: %v", err)
	}
	return out
}

func TestMergeApplies(t *testing.T) {
	tests := []struct {
		name        string
		patch       string
		wantChanged []string
		check       func(t *testing.T, rc *domain.ReplicationController)
	}{
		{
			name:        "replace name",
			patch:       `[{"op":"replace","path":"/name","value":"renamed"}]`,
			wantChanged: []string{"name"},
			check: func(t *testing.T, rc *domain.ReplicationController) {
				if rc.Name != "renamed" {
					t.Errorf("Name = %q", rc.Name)
				}
			},
		},
		{
			name:        "replace replicas and images",
			patch:       `[{"op":"replace","path":"/replicas","value":5},{"op":"add","path":"/images/-","value":"sidecar"}]`,
			wantChanged: []string{"images", "replicas"},
			check: func(t *testing.T, rc *domain.ReplicationController) {
				if rc.Replicas != 5 {
					t.Errorf("Replicas = %d", rc.Replicas)
				}
				if diff := cmp.Diff([]string{"MyImage", "sidecar"}, rc.Images); diff != "" {
					t.Errorf("Images (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:        "remove name clears it",
			patch:       `[{"op":"remove","path":"/name"}]`,
			wantChanged: []string{"name"},
			check: func(t *testing.T, rc *domain.ReplicationController) {
				if rc.Name != "" {
					t.Errorf("Name = %q, want empty", rc.Name)
				}
			},
		},
		{
			name:        "nested selector key",
			patch:       `[{"op":"add","path":"/selector/tier","value":"front"}]`,
			wantChanged: []string{"selector"},
			check: func(t *testing.T, rc *domain.ReplicationController) {
				want := map[string]string{"name": "foo", "tier": "front"}
				if diff := cmp.Diff(want, rc.Selector); diff != "" {
					t.Errorf("Selector (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:        "move to another bay",
			patch:       `[{"op":"replace","path":"/bay_uuid","value":"` + bayB + `"}]`,
			wantChanged: []string{"bay_uuid"},
			check: func(t *testing.T, rc *domain.ReplicationController) {
				if rc.BayUUID != bayB {
					t.Errorf("BayUUID = %q", rc.BayUUID)
				}
			},
		},
		{
			name:        "create-only fields are ignored, the rest applies",
			patch:       `[{"op":"replace","path":"/rc_data","value":"x"},{"op":"replace","path":"/rc_definition_url","value":"http://other"},{"op":"replace","path":"/name","value":"n2"}]`,
			wantChanged: []string{"name"},
			check: func(t *testing.T, rc *domain.ReplicationController) {
				orig := sampleRecord()
				if rc.RCData != orig.RCData || rc.RCDefinitionURL != orig.RCDefinitionURL {
					t.Errorf("create-only fields changed: %q %q", rc.RCData, rc.RCDefinitionURL)
				}
				if rc.Name != "n2" {
					t.Errorf("Name = %q, want n2", rc.Name)
				}
			},
		},
		{
			name:        "same value is not a change",
			patch:       `[{"op":"replace","path":"/replicas","value":2}]`,
			wantChanged: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, _ := newResolver()
			current := sampleRecord()

			updated, changed, err := Merge(context.Background(), res, current, ops(t, tt.patch))
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if diff := cmp.Diff(tt.wantChanged, changed); diff != "" {
				t.Errorf("changed fields (-want +got):\n%s", diff)
			}
			if updated.UUID != current.UUID || updated.ID != current.ID {
				t.Error("identity must survive a patch")
			}
			if diff := cmp.Diff(sampleRecord(), current); diff != "" {
				t.Errorf("Merge modified its input (-want +got):\n%s", diff)
			}
			if tt.check != nil {
				tt.check(t, updated)
			}
		})
	}
}

func TestMergeRejects(t *testing.T) {
	tests := []struct {
		name      string
		patch     string
		wantPatch bool // error should wrap ErrPatch
	}{
		{name: "replace uuid", patch: `[{"op":"replace","path":"/uuid","value":"` + rcTwo + `"}]`},
		{name: "remove rc_uuid", patch: `[{"op":"remove","path":"/rc_uuid"}]`},
		{name: "replace rc_uuid with another rc", patch: `[{"op":"replace","path":"/rc_uuid","value":"` + rcTwo + `"}]`},
		{name: "patch links", patch: `[{"op":"replace","path":"/links","value":[]}]`},
		{name: "patch created_at", patch: `[{"op":"replace","path":"/created_at","value":"2020-01-01T00:00:00Z"}]`},
		{name: "unsupported op", patch: `[{"op":"move","from":"/name","path":"/rc_data"}]`},
		{name: "malformed path", patch: `[{"op":"replace","path":"name","value":"x"}]`},
		{name: "missing value", patch: `[{"op":"replace","path":"/name"}]`},
		{name: "new root attribute", patch: `[{"op":"add","path":"/color","value":"red"}]`},
		{name: "replace missing nested path", patch: `[{"op":"replace","path":"/selector/nope","value":"x"}]`, wantPatch: true},
		{name: "remove missing nested path", patch: `[{"op":"remove","path":"/selector/nope"}]`, wantPatch: true},
		{name: "type mismatch", patch: `[{"op":"replace","path":"/replicas","value":"lots"}]`},
		{name: "unknown bay", patch: `[{"op":"replace","path":"/bay_uuid","value":"` + bayGhost + `"}]`},
		{name: "empty document", patch: `[]`},
		{name: "one bad op spoils the rest", patch: `[{"op":"replace","path":"/name","value":"ok"},{"op":"replace","path":"/uuid","value":"` + rcTwo + `"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, _ := newResolver()
			current := sampleRecord()

			updated, changed, err := Merge(context.Background(), res, current, ops(t, tt.patch))
			if !domain.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if tt.wantPatch && !errors.Is(err, ErrPatch) {
				t.Errorf("expected ErrPatch in chain, got %v", err)
			}
			if updated != nil || changed != nil {
				t.Error("nothing must be returned on failure")
			}
			if diff := cmp.Diff(sampleRecord(), current); diff != "" {
				t.Errorf("record mutated by a rejected patch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeStoreFailureIsNotValidation(t *testing.T) {
	res, _, bays := newResolver()
	bays.err = errStoreDown

	_, _, err := Merge(context.Background(), res, sampleRecord(),
		ops(t, `[{"op":"replace","path":"/bay_uuid","value":"`+bayB+`"}]`))
	if !errors.Is(err, errStoreDown) || domain.IsValidation(err) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}
