package feed

import (
	"context"
	"sync"
	"time"

	"bitbucket.org/wildlifefocus/reptileguard_backend/config"
	"bitbucket.org/wildlifefocus/reptileguard_backend/models"
)

// FetchFunc loads the full report list from the store.
type FetchFunc func(ctx context.Context) ([]*models.SightingReport, error)

// Snapshot is one delivery to a watcher. Each snapshot replaces the previous
// list wholesale; watchers never patch.
type Snapshot struct {
	Reports []*models.SightingReport `json:"reports"`
	Loading bool                     `json:"loading"`
}

// Hub fans live report snapshots out to watchers. A single fetch per refresh
// serves every watcher; each watcher sees the list narrowed to its own scope
// and filter.
type Hub struct {
	fetch FetchFunc

	mu     sync.Mutex
	subs   map[int64]*subscriber
	nextId int64
	last   []*models.SightingReport
	loaded bool
}

type subscriber struct {
	scope  Scope
	filter Filter
	ch     chan Snapshot
}

// Subscription is a live watch on the feed. Cancel is idempotent.
type Subscription struct {
	C      <-chan Snapshot
	Cancel func()
}

func NewHub(fetch FetchFunc) *Hub {
	return &Hub{
		fetch: fetch,
		subs:  map[int64]*subscriber{},
	}
}

// Watch registers a watcher and immediately queues a loading snapshot
// followed by the current data. The watch ends when ctx is done or Cancel is
// called.
func (h *Hub) Watch(ctx context.Context, scope Scope, filter Filter) *Subscription {

	sub := &subscriber{scope: scope, filter: filter, ch: make(chan Snapshot, 1)}

	h.mu.Lock()
	h.nextId++
	id := h.nextId
	h.subs[id] = sub
	loaded := h.loaded
	last := h.last
	h.mu.Unlock()

	if loaded {
		deliver(sub, last)
	} else {
		push(sub.ch, Snapshot{Loading: true})
		go h.Refresh(ctx)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()

	return &Subscription{C: sub.ch, Cancel: cancel}
}

// Refresh reloads from the store and fans the result out. On fetch failure
// watchers keep their last good snapshot.
func (h *Hub) Refresh(ctx context.Context) {

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	reports, err := h.fetch(fetchCtx)
	if err != nil {
		config.LogError(config.GetLogger(), "feed", "Refresh", "Failed to reload report feed", nil, err)

		// Watchers must never hang in the loading state: fan out the last
		// good list (possibly empty) so the done-loading signal still fires.
		h.mu.Lock()
		last := h.last
		subs := make([]*subscriber, 0, len(h.subs))
		for _, s := range h.subs {
			subs = append(subs, s)
		}
		h.mu.Unlock()

		for _, s := range subs {
			deliver(s, last)
		}
		return
	}

	h.mu.Lock()
	h.last = reports
	h.loaded = true
	subs := make([]*subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		deliver(s, reports)
	}
}

func deliver(s *subscriber, reports []*models.SightingReport) {
	push(s.ch, Snapshot{Reports: Apply(reports, s.scope, s.filter)})
}

// push coalesces: a watcher that has not drained the previous snapshot gets
// only the newest one.
func push(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// WatcherCount reports live watchers, used by the readiness endpoint.
func (h *Hub) WatcherCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
