package feed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
)

// NOTE: These tests are intentionally DB-free; the fetch function is faked.

func waitSnapshot(t *testing.T, c <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap := <-c:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func TestWatchDeliversLoadingThenData(t *testing.T) {
	r := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 9, 0, 0))
	hub := NewHub(func(ctx context.Context) ([]*models.SightingReport, error) {
		return []*models.SightingReport{r}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := hub.Watch(ctx, citizenScope("citizen-1"), Filter{})
	defer sub.Cancel()

	first := waitSnapshot(t, sub.C)
	if !first.Loading && len(first.Reports) != 1 {
		t.Fatalf("unexpected first snapshot: loading=%v reports=%d", first.Loading, len(first.Reports))
	}
	if first.Loading {
		data := waitSnapshot(t, sub.C)
		if data.Loading || len(data.Reports) != 1 {
			t.Fatalf("expected data snapshot after loading, got loading=%v reports=%d", data.Loading, len(data.Reports))
		}
	}
}

func TestSecondWatcherGetsCachedSnapshotImmediately(t *testing.T) {
	r := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 9, 0, 0))
	var fetches atomic.Int64
	hub := NewHub(func(ctx context.Context) ([]*models.SightingReport, error) {
		fetches.Add(1)
		return []*models.SightingReport{r}, nil
	})

	hub.Refresh(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := hub.Watch(ctx, citizenScope("citizen-1"), Filter{})
	defer sub.Cancel()

	snap := waitSnapshot(t, sub.C)
	if snap.Loading || len(snap.Reports) != 1 {
		t.Fatalf("expected cached data snapshot, got loading=%v reports=%d", snap.Loading, len(snap.Reports))
	}
	if fetches.Load() != 1 {
		t.Fatalf("watch after refresh should not refetch, fetches=%d", fetches.Load())
	}
}

func TestRefreshFailureKeepsLastGoodData(t *testing.T) {
	r := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 9, 0, 0))
	var fail atomic.Bool
	hub := NewHub(func(ctx context.Context) ([]*models.SightingReport, error) {
		if fail.Load() {
			return nil, errors.New("store down")
		}
		return []*models.SightingReport{r}, nil
	})

	hub.Refresh(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := hub.Watch(ctx, citizenScope("citizen-1"), Filter{})
	defer sub.Cancel()
	waitSnapshot(t, sub.C)

	fail.Store(true)
	hub.Refresh(context.Background())

	// A failed refresh re-delivers the last good list, never a blank one.
	snap := waitSnapshot(t, sub.C)
	if snap.Loading || len(snap.Reports) != 1 {
		t.Fatalf("failed refresh should keep last good data, got loading=%v reports=%d", snap.Loading, len(snap.Reports))
	}
}

func TestLoadingTerminatesWhenFirstFetchFails(t *testing.T) {
	hub := NewHub(func(ctx context.Context) ([]*models.SightingReport, error) {
		return nil, errors.New("store down")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := hub.Watch(ctx, citizenScope("citizen-1"), Filter{})
	defer sub.Cancel()

	// The loading snapshot may be coalesced away by the done-loading one;
	// either way a non-loading snapshot must arrive.
	snap := waitSnapshot(t, sub.C)
	if snap.Loading {
		snap = waitSnapshot(t, sub.C)
	}
	if snap.Loading {
		t.Fatal("watcher stuck in loading state after fetch failure")
	}
	if len(snap.Reports) != 0 {
		t.Fatalf("no data was ever fetched, got %d reports", len(snap.Reports))
	}
}

func TestSlowWatcherGetsOnlyNewestSnapshot(t *testing.T) {
	first := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusPending, at(10, 9, 0, 0))
	second := report("citizen-1", "Karnataka", "Bengaluru Urban", models.RescueStatusRescued, at(11, 9, 0, 0))
	current := atomic.Pointer[models.SightingReport]{}
	current.Store(first)
	hub := NewHub(func(ctx context.Context) ([]*models.SightingReport, error) {
		return []*models.SightingReport{current.Load()}, nil
	})

	hub.Refresh(context.Background())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := hub.Watch(ctx, citizenScope("citizen-1"), Filter{})
	defer sub.Cancel()

	// Do not drain; push two refreshes so the buffered snapshot is replaced.
	current.Store(second)
	hub.Refresh(context.Background())
	hub.Refresh(context.Background())

	snap := waitSnapshot(t, sub.C)
	if len(snap.Reports) != 1 || snap.Reports[0].Status != models.RescueStatusRescued {
		t.Fatal("slow watcher should see only the newest snapshot")
	}
}

func TestCancelRemovesWatcher(t *testing.T) {
	hub := NewHub(func(ctx context.Context) ([]*models.SightingReport, error) {
		return nil, nil
	})
	hub.Refresh(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := hub.Watch(ctx, citizenScope("citizen-1"), Filter{})
	if hub.WatcherCount() != 1 {
		t.Fatalf("expected 1 watcher, got %d", hub.WatcherCount())
	}

	sub.Cancel()
	sub.Cancel() // idempotent
	if hub.WatcherCount() != 0 {
		t.Fatalf("expected 0 watchers after cancel, got %d", hub.WatcherCount())
	}
}
