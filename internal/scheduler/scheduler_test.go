package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/rcapi/internal/domain"
	"github.com/MrSnakeDoc/rcapi/internal/logger"
	"github.com/MrSnakeDoc/rcapi/internal/store/memory"
)

const inventory = `bays:
  - uuid: 5d12f6fd-a196-4bf0-ae4c-1f639a523a52
    name: prod
  - uuid: 27e3153e-d5bf-4b7e-b517-fb518e17f34c
    name: dev
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bays.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBayReloaderReload(t *testing.T) {
	st := memory.NewStore()
	br := NewBayReloader(writeFile(t, inventory), st, logger.NewNop(), time.Hour, nil)

	if !br.LastReload().IsZero() {
		t.Error("LastReload() set before any reload")
	}
	if err := br.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if br.LastReload().IsZero() {
		t.Error("LastReload() not recorded")
	}

	all, _ := st.GetAllBays(context.Background())
	if len(all) != 2 {
		t.Errorf("store holds %d bays, want 2", len(all))
	}
	if _, err := st.GetBay(context.Background(), "27e3153e-d5bf-4b7e-b517-fb518e17f34c"); err != nil {
		t.Errorf("GetBay() error = %v", err)
	}
}

func TestBayReloaderStartFailsOnBadInventory(t *testing.T) {
	st := memory.NewStore()
	br := NewBayReloader(writeFile(t, "bays: []\n"), st, logger.NewNop(), time.Hour, nil)

	if err := br.Start(context.Background()); err == nil {
		t.Error("Start() with an empty inventory should fail")
	}
}

func TestBayReloaderManualTrigger(t *testing.T) {
	path := writeFile(t, inventory)
	st := memory.NewStore()
	trigger := make(chan struct{}, 1)
	br := NewBayReloader(path, st, logger.NewNop(), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := br.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer br.Stop()

	first := st.GetLastBayReload()
	time.Sleep(5 * time.Millisecond)
	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for !st.GetLastBayReload().After(first) {
		if time.Now().After(deadline) {
			t.Fatal("manual trigger did not reload bays")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBayPrunerPrune(t *testing.T) {
	st := memory.NewStore()
	now := time.Now()
	_ = st.SaveBaysMany(context.Background(), []*domain.Bay{
		{UUID: "fresh", LastSeenAt: now.Add(-time.Hour)},
		{UUID: "stale", LastSeenAt: now.Add(-48 * time.Hour)},
		{UUID: "never-seen"},
	})

	bp := NewBayPruner(st, logger.NewNop(), time.Hour, 24*time.Hour)
	bp.now = func() time.Time { return now }

	deleted, err := bp.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted %d bays, want 1", deleted)
	}
	if _, err := st.GetBay(context.Background(), "stale"); !domain.IsNotFound(err) {
		t.Error("stale bay survived")
	}
	for _, id := range []string{"fresh", "never-seen"} {
		if _, err := st.GetBay(context.Background(), id); err != nil {
			t.Errorf("bay %s was removed: %v", id, err)
		}
	}
}

type fakeRebuilder struct {
	fixed int
	err   error
	calls int
}

func (f *fakeRebuilder) RebuildIndex(context.Context) (int, error) {
	f.calls++
	return f.fixed, f.err
}

func TestIndexRepairRun(t *testing.T) {
	fr := &fakeRebuilder{fixed: 3}
	if err := NewIndexRepair(fr, logger.NewNop()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if fr.calls != 1 {
		t.Errorf("RebuildIndex called %d times, want 1", fr.calls)
	}

	boom := errors.New("scan failed")
	if err := NewIndexRepair(&fakeRebuilder{err: boom}, logger.NewNop()).Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run() = %v, want %v", err, boom)
	}
}
