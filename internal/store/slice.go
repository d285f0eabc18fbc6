package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"astro-admin-go/internal/apiclient"
	"astro-admin-go/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
)

var (
	ErrClosed    = errors.New("store: slice closed")
	ErrMissingID = errors.New("store: id is required")
	ErrUnknownOp = errors.New("store: unknown operation")
)

// IsAborted reports whether err came from a cancelled op or a closed
// slice rather than from the backend.
func IsAborted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed)
}

// Requester is the HTTP surface a slice needs; *apiclient.Client
// implements it.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Endpoint locates an entity on the backend. Item defaults to
// Collection + id + "/".
type Endpoint struct {
	Collection string
	Item       func(id string) string
}

func (e Endpoint) itemPath(id string) string {
	if e.Item != nil {
		return e.Item(id)
	}
	return strings.TrimRight(e.Collection, "/") + "/" + url.PathEscape(id) + "/"
}

// State is the read-only view of a slice.
type State[T models.Entity] struct {
	Items      []T               `json:"items"`
	Selected   *T                `json:"selected"`
	Pagination models.Pagination `json:"pagination"`
	Loading    bool              `json:"loading"`
	Error      string            `json:"error,omitempty"`
}

// Action is the untyped form of a slice operation, used by consumers that
// route by name (gateway, CLI).
type Action struct {
	Op      Op                `json:"op"`
	ID      string            `json:"id,omitempty"`
	Params  models.ListParams `json:"params,omitempty"`
	Payload json.RawMessage   `json:"payload,omitempty"`
}

// Handle is the type-erased side of a Slice.
type Handle interface {
	Name() string
	Dispatch(ctx context.Context, action Action) (any, error)
	Snapshot() any
	Reset()
	Close()
}

// Slice owns the state of one entity type: a normalized table keyed by id,
// the ordered ids of the current page, the selected id and request status.
type Slice[T models.Entity] struct {
	name     string
	api      Requester
	endpoint Endpoint
	store    *Store
	log      logrus.FieldLogger

	mu         sync.Mutex
	table      map[string]T
	order      []string
	selected   string
	pagination models.Pagination
	err        string

	seq       uint64
	statusSeq uint64
	listSeq   uint64
	getSeq    uint64
	resetSeq  uint64
	inflight  map[uint64]context.CancelFunc
	closed    bool
}

func (s *Slice[T]) Name() string { return s.name }

// View returns a consistent snapshot with the collection and selected
// record resolved from the table.
func (s *Slice[T]) View() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Slice[T]) viewLocked() State[T] {
	items := make([]T, 0, len(s.order))
	for _, id := range s.order {
		if record, ok := s.table[id]; ok {
			items = append(items, record)
		}
	}
	state := State[T]{
		Items:      items,
		Pagination: s.pagination,
		Loading:    len(s.inflight) > 0,
		Error:      s.err,
	}
	if s.selected != "" {
		if record, ok := s.table[s.selected]; ok {
			state.Selected = &record
		}
	}
	return state
}

func (s *Slice[T]) Snapshot() any { return s.View() }

// List fetches one page and replaces the collection and pagination.
func (s *Slice[T]) List(ctx context.Context, params models.ListParams) error {
	req, err := s.begin(ctx, OpList, "")
	if err != nil {
		return err
	}
	var page models.Page[T]
	err = s.api.Get(req.ctx, s.endpoint.Collection, params.Query(), &page)
	s.settle(req, err, func() {
		if page.Derived {
			s.log.WithFields(logrus.Fields{"slice": s.name, "total": page.Pagination.TotalCount}).Debug("response had no page count, derived it")
		}
		table := make(map[string]T, len(page.Items)+1)
		order := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			id := item.EntityID()
			if _, seen := table[id]; !seen {
				order = append(order, id)
			}
			table[id] = item
		}
		if s.selected != "" {
			if _, ok := table[s.selected]; !ok {
				if record, had := s.table[s.selected]; had {
					table[s.selected] = record
				}
			}
		}
		s.table = table
		s.order = order
		s.pagination = page.Pagination
	})
	return err
}

// Get loads one full record and makes it the selected record.
func (s *Slice[T]) Get(ctx context.Context, id string) (T, error) {
	var record T
	if id == "" && s.endpoint.Item == nil {
		return record, ErrMissingID
	}
	req, err := s.begin(ctx, OpGet, id)
	if err != nil {
		return record, err
	}
	err = s.api.Get(req.ctx, s.endpoint.itemPath(id), nil, &record)
	s.settle(req, err, func() {
		s.put(key(record, id), record)
		s.selected = key(record, id)
	})
	return record, err
}

// Create validates payload, posts it and appends the server's record.
func (s *Slice[T]) Create(ctx context.Context, payload T) (T, error) {
	var record T
	req, err := s.begin(ctx, OpCreate, "")
	if err != nil {
		return record, err
	}
	if err := validate(payload); err != nil {
		s.settle(req, err, nil)
		return record, err
	}
	err = s.api.Post(req.ctx, s.endpoint.Collection, payload, &record)
	s.settle(req, err, func() {
		id := record.EntityID()
		if _, exists := s.table[id]; !exists {
			s.order = append(s.order, id)
		}
		s.put(id, record)
	})
	return record, err
}

// Update validates payload, PUTs it and replaces the selected record and
// the matching collection entry with the server's canonical record.
func (s *Slice[T]) Update(ctx context.Context, id string, payload T) (T, error) {
	var record T
	if id == "" && s.endpoint.Item == nil {
		return record, ErrMissingID
	}
	req, err := s.begin(ctx, OpUpdate, id)
	if err != nil {
		return record, err
	}
	if err := validateUpdate(payload); err != nil {
		s.settle(req, err, nil)
		return record, err
	}
	err = s.api.Put(req.ctx, s.endpoint.itemPath(id), payload, &record)
	s.settle(req, err, func() { s.replace(id, record) })
	return record, err
}

// Patch sends a partial update. Field values are not schema-checked since
// the full record is not known client-side.
func (s *Slice[T]) Patch(ctx context.Context, id string, fields map[string]any) (T, error) {
	var record T
	if id == "" && s.endpoint.Item == nil {
		return record, ErrMissingID
	}
	req, err := s.begin(ctx, OpPatch, id)
	if err != nil {
		return record, err
	}
	if len(fields) == 0 {
		err = validation.Errors{"fields": errors.New("nothing to update")}
		s.settle(req, err, nil)
		return record, err
	}
	err = s.api.Patch(req.ctx, s.endpoint.itemPath(id), fields, &record)
	s.settle(req, err, func() { s.replace(id, record) })
	return record, err
}

// Delete removes the record from the backend, then filters it out of the
// collection.
func (s *Slice[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	req, err := s.begin(ctx, OpDelete, id)
	if err != nil {
		return err
	}
	err = s.api.Delete(req.ctx, s.endpoint.itemPath(id), nil)
	s.settle(req, err, func() {
		order := s.order[:0:0]
		for _, existing := range s.order {
			if existing != id {
				order = append(order, existing)
			}
		}
		s.order = order
		delete(s.table, id)
		if s.selected == id {
			s.selected = ""
		}
	})
	return err
}

// Dispatch runs an Action and returns the resulting snapshot.
func (s *Slice[T]) Dispatch(ctx context.Context, action Action) (any, error) {
	var err error
	switch action.Op {
	case OpList:
		err = s.List(ctx, action.Params)
	case OpGet:
		_, err = s.Get(ctx, action.ID)
	case OpCreate:
		var payload T
		if err = decodePayload(action.Payload, &payload); err == nil {
			_, err = s.Create(ctx, payload)
		}
	case OpUpdate:
		var payload T
		if err = decodePayload(action.Payload, &payload); err == nil {
			_, err = s.Update(ctx, action.ID, payload)
		}
	case OpPatch:
		var fields map[string]any
		if err = decodePayload(action.Payload, &fields); err == nil {
			_, err = s.Patch(ctx, action.ID, fields)
		}
	case OpDelete:
		err = s.Delete(ctx, action.ID)
	case OpReset:
		s.Reset()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownOp, action.Op)
	}
	return s.View(), err
}

// Reset drops all records and status, e.g. after logout. In-flight
// requests keep running but their results are discarded.
func (s *Slice[T]) Reset() {
	s.store.transition(func() Event {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.table = map[string]T{}
		s.order = nil
		s.selected = ""
		s.pagination = models.Pagination{}
		s.err = ""
		s.seq++
		s.statusSeq = s.seq
		s.listSeq = s.seq
		s.getSeq = s.seq
		s.resetSeq = s.seq
		return Event{Slice: s.name, Op: OpReset, Phase: PhaseFulfilled, Seq: s.seq, State: s.viewLocked()}
	})
}

// Close cancels every in-flight request and rejects new ones.
func (s *Slice[T]) Close() {
	s.mu.Lock()
	s.closed = true
	cancels := make([]context.CancelFunc, 0, len(s.inflight))
	for _, cancel := range s.inflight {
		cancels = append(cancels, cancel)
	}
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

type inflightCall struct {
	ctx    context.Context
	cancel context.CancelFunc
	seq    uint64
	op     Op
	id     string
}

func (s *Slice[T]) begin(ctx context.Context, op Op, id string) (*inflightCall, error) {
	var c *inflightCall
	var closed bool
	s.store.transition(func() Event {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			closed = true
			return Event{}
		}
		s.seq++
		reqCtx, cancel := context.WithCancel(ctx)
		c = &inflightCall{ctx: reqCtx, cancel: cancel, seq: s.seq, op: op, id: id}
		s.inflight[c.seq] = cancel
		s.statusSeq = c.seq
		// The last dispatched op wins: a mutation makes earlier fetches of
		// the records it touches stale.
		switch op {
		case OpList, OpCreate:
			s.listSeq = c.seq
		case OpGet:
			s.getSeq = c.seq
		case OpUpdate, OpPatch, OpDelete:
			s.listSeq = c.seq
			s.getSeq = c.seq
		}
		s.err = ""
		return Event{Slice: s.name, Op: op, Phase: PhasePending, Seq: c.seq, ID: id, State: s.viewLocked()}
	})
	if closed {
		return nil, ErrClosed
	}
	return c, nil
}

// settle finishes a call. merge runs under the slice lock only when the
// call succeeded and is not superseded by a newer op on the same records.
func (s *Slice[T]) settle(c *inflightCall, err error, merge func()) {
	defer c.cancel()
	s.store.transition(func() Event {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.inflight, c.seq)
		current := c.seq == s.statusSeq
		event := Event{Slice: s.name, Op: c.op, Seq: c.seq, ID: c.id}
		switch {
		case err != nil && errors.Is(err, context.Canceled):
			event.Phase = PhaseAborted
		case err != nil:
			event.Phase = PhaseRejected
			event.Error = apiclient.Message(err)
			event.Stale = !current
			if current {
				s.err = event.Error
			}
			s.log.WithFields(logrus.Fields{
				"slice":  s.name,
				"op":     c.op,
				"id":     c.id,
				"status": apiclient.StatusOf(err),
				"error":  err,
			}).Warn("slice operation rejected")
		default:
			event.Phase = PhaseFulfilled
			if s.superseded(c) {
				event.Stale = true
				s.log.WithFields(logrus.Fields{"slice": s.name, "op": c.op, "seq": c.seq}).Debug("discarding stale response")
			} else if merge != nil {
				merge()
			}
		}
		event.State = s.viewLocked()
		return event
	})
}

func (s *Slice[T]) superseded(c *inflightCall) bool {
	switch c.op {
	case OpList:
		return c.seq != s.listSeq
	case OpGet:
		return c.seq != s.getSeq
	}
	// Mutations always merge unless a Reset happened after they started.
	return c.seq < s.resetSeq
}

func (s *Slice[T]) put(id string, record T) {
	if s.table == nil {
		s.table = map[string]T{}
	}
	s.table[id] = record
}

func (s *Slice[T]) replace(requestedID string, record T) {
	id := key(record, requestedID)
	s.put(id, record)
	s.selected = id
}

func key[T models.Entity](record T, fallback string) string {
	if id := record.EntityID(); id != "" {
		return id
	}
	return fallback
}

// UpdateValidatable is implemented by entities whose rules differ when an
// existing record is replaced, e.g. a user edit without a new password.
type UpdateValidatable interface {
	ValidateUpdate() error
}

func validate(payload any) error {
	if v, ok := payload.(validation.Validatable); ok {
		return v.Validate()
	}
	return nil
}

func validateUpdate(payload any) error {
	if v, ok := payload.(UpdateValidatable); ok {
		return v.ValidateUpdate()
	}
	return validate(payload)
}

func decodePayload(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return validation.Errors{"payload": errors.New("is required")}
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return validation.Errors{"payload": fmt.Errorf("invalid JSON: %v", err)}
	}
	return nil
}

