// Package store composes per-entity slices into one process-wide state
// container. Every transition goes through the container so subscribers
// observe them in the order they happened.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"astro-admin-go/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Store struct {
	log logrus.FieldLogger

	// transitions serializes every state change and its publication.
	transitions sync.Mutex

	mu     sync.RWMutex
	slices map[string]Handle
	order  []string

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func New(log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		log:    log,
		slices: map[string]Handle{},
		subs:   map[int]func(Event){},
	}
}

// Register creates the slice name for entity type T and adds it to st.
// Registering a name twice panics; slice names are fixed at startup.
func Register[T models.Entity](st *Store, name string, api Requester, endpoint Endpoint) *Slice[T] {
	slice := &Slice[T]{
		name:     name,
		api:      api,
		endpoint: endpoint,
		store:    st,
		log:      st.log,
		table:    map[string]T{},
		inflight: map[uint64]context.CancelFunc{},
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.slices[name]; exists {
		panic(fmt.Sprintf("store: slice %q registered twice", name))
	}
	st.slices[name] = slice
	st.order = append(st.order, name)
	return slice
}

func (st *Store) Handle(name string) (Handle, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	handle, ok := st.slices[name]
	return handle, ok
}

// Names lists registered slices in registration order.
func (st *Store) Names() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]string(nil), st.order...)
}

// Snapshot returns the current view of every slice keyed by name.
func (st *Store) Snapshot() map[string]any {
	st.mu.RLock()
	handles := make(map[string]Handle, len(st.slices))
	for name, handle := range st.slices {
		handles[name] = handle
	}
	st.mu.RUnlock()
	snapshot := make(map[string]any, len(handles))
	for name, handle := range handles {
		snapshot[name] = handle.Snapshot()
	}
	return snapshot
}

// Subscribe registers fn for every transition. fn runs synchronously while
// transitions are held, so it must not dispatch; hand events off to a
// goroutine or channel instead.
func (st *Store) Subscribe(fn func(Event)) func() {
	st.subsMu.Lock()
	id := st.nextSub
	st.nextSub++
	st.subs[id] = fn
	st.subsMu.Unlock()
	return func() {
		st.subsMu.Lock()
		delete(st.subs, id)
		st.subsMu.Unlock()
	}
}

// Dispatch routes an action to the named slice.
func (st *Store) Dispatch(ctx context.Context, name string, action Action) (any, error) {
	handle, ok := st.Handle(name)
	if !ok {
		return nil, fmt.Errorf("store: unknown slice %q", name)
	}
	return handle.Dispatch(ctx, action)
}

// Refresh lists the first page of each named slice concurrently. Slices
// fail independently; the first error is returned once all settled.
func (st *Store) Refresh(ctx context.Context, params models.ListParams, names ...string) error {
	if len(names) == 0 {
		names = st.Names()
	}
	// A plain group: one failing slice must not cancel the others.
	var group errgroup.Group
	for _, name := range names {
		handle, ok := st.Handle(name)
		if !ok {
			return fmt.Errorf("store: unknown slice %q", name)
		}
		group.Go(func() error {
			_, err := handle.Dispatch(ctx, Action{Op: OpList, Params: params})
			return err
		})
	}
	return group.Wait()
}

// Reset clears every slice, e.g. on logout.
func (st *Store) Reset() {
	for _, name := range st.Names() {
		if handle, ok := st.Handle(name); ok {
			handle.Reset()
		}
	}
}

// Close cancels in-flight requests of every slice.
func (st *Store) Close() {
	for _, name := range st.Names() {
		if handle, ok := st.Handle(name); ok {
			handle.Close()
		}
	}
}

func (st *Store) transition(fn func() Event) {
	st.transitions.Lock()
	defer st.transitions.Unlock()
	event := fn()
	if event.Slice == "" {
		return
	}
	event.At = time.Now().UTC()
	st.subsMu.Lock()
	subs := make([]func(Event), 0, len(st.subs))
	for _, sub := range st.subs {
		subs = append(subs, sub)
	}
	st.subsMu.Unlock()
	for _, sub := range subs {
		sub(event)
	}
}
