package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
)

func TestCreateAssignsIdentity(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a, err := s.Create(ctx, &domain.ReplicationController{Name: "a"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	b, err := s.Create(ctx, &domain.ReplicationController{Name: "b"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if a.ID != 1 || b.ID != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", a.ID, b.ID)
	}
	if a.UUID == "" || a.UUID == b.UUID {
		t.Errorf("uuids not assigned uniquely: %q %q", a.UUID, b.UUID)
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if !a.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should stay empty until the first save")
	}
}

func TestCreateDuplicateUUID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	rc := &domain.ReplicationController{UUID: "7f1c2d0e-0000-4000-8000-000000000001"}

	if _, err := s.Create(ctx, rc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Create(ctx, rc); domain.HTTPStatus(err) != 409 {
		t.Errorf("duplicate Create() = %v, want ConflictError", err)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, _ := s.Create(ctx, &domain.ReplicationController{Images: []string{"nginx"}})
	created.Images[0] = "mutated"

	got, err := s.GetByUUID(ctx, created.UUID)
	if err != nil {
		t.Fatalf("GetByUUID() error = %v", err)
	}
	if got.Images[0] != "nginx" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestSaveVersioning(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	created, _ := s.Create(ctx, &domain.ReplicationController{Name: "v1"})

	first := created.Clone()
	second := created.Clone()

	first.Name = "first"
	saved, err := s.Save(ctx, first)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.Version != created.Version+1 {
		t.Errorf("Version = %d, want %d", saved.Version, created.Version+1)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set by Save")
	}

	second.Name = "second"
	if _, err := s.Save(ctx, second); domain.HTTPStatus(err) != 409 {
		t.Fatalf("stale Save() = %v, want ConflictError", err)
	}

	got, _ := s.GetByUUID(ctx, created.UUID)
	if got.Name != "first" {
		t.Errorf("Name = %q, the stale write must not land", got.Name)
	}
}

func TestSaveMissing(t *testing.T) {
	s := NewStore()
	_, err := s.Save(context.Background(), &domain.ReplicationController{UUID: "nope"})
	if !domain.IsNotFound(err) {
		t.Errorf("Save() = %v, want NotFoundError", err)
	}
}

func TestDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	rc, _ := s.Create(ctx, &domain.ReplicationController{})
	if err := s.Delete(ctx, rc); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.GetByUUID(ctx, rc.UUID); !domain.IsNotFound(err) {
		t.Errorf("GetByUUID() after delete = %v, want NotFoundError", err)
	}
	if err := s.Delete(ctx, rc); !domain.IsNotFound(err) {
		t.Errorf("second Delete() = %v, want NotFoundError", err)
	}
}

func TestListPaginates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var created []*domain.ReplicationController
	for range 5 {
		rc, _ := s.Create(ctx, &domain.ReplicationController{})
		created = append(created, rc)
	}

	page, err := s.List(ctx, domain.ListOptions{Limit: 2, Marker: created[1]})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page) != 2 || page[0].ID != 3 || page[1].ID != 4 {
		t.Errorf("List() returned unexpected page: %+v", page)
	}
}

func TestBays(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.GetBay(ctx, "b1"); !domain.IsNotFound(err) {
		t.Fatalf("GetBay() on empty store = %v, want NotFoundError", err)
	}

	err := s.SaveBaysMany(ctx, []*domain.Bay{{UUID: "b1", Name: "one"}, {UUID: "b2", Name: "two"}})
	if err != nil {
		t.Fatalf("SaveBaysMany() error = %v", err)
	}
	if s.GetLastBayReload().IsZero() {
		t.Error("GetLastBayReload() not updated")
	}

	bay, err := s.GetBay(ctx, "b1")
	if err != nil || bay.Name != "one" {
		t.Fatalf("GetBay() = %+v, %v", bay, err)
	}

	_ = s.DeleteBay(ctx, "b1")
	all, _ := s.GetAllBays(ctx)
	if len(all) != 1 || all[0].UUID != "b2" {
		t.Errorf("GetAllBays() = %+v, want only b2", all)
	}
}

func TestConcurrentCreate(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Create(ctx, &domain.ReplicationController{})
		}()
	}
	wg.Wait()

	if s.Count() != 50 {
		t.Errorf("Count() = %d, want 50", s.Count())
	}
}
