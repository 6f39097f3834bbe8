package archive

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/scaffold/internal/models"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type kinds struct {
	mu  sync.Mutex
	got []string
}

func (k *kinds) add(kind string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.got = append(k.got, kind)
}

func (k *kinds) has(kind string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, g := range k.got {
		if g == kind {
			return true
		}
	}
	return false
}

func TestWatcher_AppendSyncsArchive(t *testing.T) {
	db := testDB(t)
	store := testVault(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen kinds
	go Watch(ctx, db, store, quietLogger(), seen.add)
	time.Sleep(100 * time.Millisecond)

	if err := store.Append(models.Holograms, models.NewHologram("Resilience", "visual", "oak")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		n, _ := db.Count(models.Holograms)
		return n == 1
	}, "archive never picked up the appended hologram")
	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		return seen.has(KindChanged)
	}, "callback never received a change")
}

func TestWatcher_NilDBNotifiesOnly(t *testing.T) {
	store := testVault(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen kinds
	go Watch(ctx, nil, store, quietLogger(), seen.add)
	time.Sleep(100 * time.Millisecond)

	_ = store.Append(models.Reflections, "external edit")

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		return seen.has(KindChanged)
	}, "callback never received a change")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	store := testVault(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen kinds
	go Watch(ctx, nil, store, quietLogger(), seen.add)
	time.Sleep(100 * time.Millisecond)

	other := store.Path() + ".bak"
	if err := os.WriteFile(other, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(500 * time.Millisecond)
	if seen.has(KindChanged) {
		t.Error("unrelated file triggered a change")
	}
}

func TestWatcher_RemovedDocument(t *testing.T) {
	store := testVault(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen kinds
	go Watch(ctx, nil, store, quietLogger(), seen.add)
	time.Sleep(100 * time.Millisecond)

	if err := os.Remove(store.Path()); err != nil {
		t.Fatal(err)
	}
	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		return seen.has(KindRemoved)
	}, "callback never received a removal")
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	store := testVault(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Watch(ctx, nil, store, quietLogger(), nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
