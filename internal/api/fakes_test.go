package api

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

const (
	bayA     = "f978db47-9a37-4e9f-8572-804a10abc0ab"
	bayB     = "0c5e3f7a-1d2b-4c3e-9f8a-7b6c5d4e3f2a"
	bayGhost = "11111111-2222-4333-8444-555555555555"
	rcOne    = "f978db47-9a37-4e9f-8572-804a10abc0aa"
	rcTwo    = "87504bd9-ca50-40fd-b14e-bcb23ed42b27"
)

type fakeRCs struct {
	byUUID map[string]*domain.ReplicationController
	calls  int
	err    error
}

func (f *fakeRCs) GetByUUID(_ context.Context, id string) (*domain.ReplicationController, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rc, ok := f.byUUID[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "replication controller", ID: id}
	}
	return rc.Clone(), nil
}

type fakeBays struct {
	bays  map[string]*domain.Bay
	calls int
	err   error
}

func (f *fakeBays) GetBay(_ context.Context, id string) (*domain.Bay, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.bays[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "bay", ID: id}
	}
	return b, nil
}

var errStoreDown = errors.New("store down")

func newResolver() (*Resolver, *fakeRCs, *fakeBays) {
	rcs := &fakeRCs{byUUID: map[string]*domain.ReplicationController{
		rcOne: sampleRecord(),
		rcTwo: {ID: 2, UUID: rcTwo, Name: "other"},
	}}
	bays := &fakeBays{bays: map[string]*domain.Bay{
		bayA: {UUID: bayA, Name: "bay-a"},
		bayB: {UUID: bayB, Name: "bay-b"},
	}}
	return &Resolver{RCs: rcs, Bays: bays}, rcs, bays
}

func sampleRecord() *domain.ReplicationController {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.ReplicationController{
		ID:              1,
		UUID:            rcOne,
		Name:            "MyReplicationController",
		Images:          []string{"MyImage"},
		BayUUID:         bayA,
		Selector:        map[string]string{"name": "foo"},
		Replicas:        2,
		RCDefinitionURL: "http://example.com/rc.yaml",
		RCData:          "kind: ReplicationController",
		CreatedAt:       created,
		UpdatedAt:       created.Add(time.Hour),
		Version:         3,
	}
}
