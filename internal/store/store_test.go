package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"astro-admin-go/internal/apiclient"
	"astro-admin-go/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequest struct {
	Query url.Values
	Body  any
}

type handlerFunc func(ctx context.Context, req fakeRequest) (any, error)

// fakeAPI answers requests from per-route handlers and round-trips results
// through JSON like the real client does.
type fakeAPI struct {
	mu       sync.Mutex
	handlers map[string]handlerFunc
	calls    []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{handlers: map[string]handlerFunc{}}
}

func (f *fakeAPI) on(method, path string, h handlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = h
}

func (f *fakeAPI) respond(value any) handlerFunc {
	return func(context.Context, fakeRequest) (any, error) { return value, nil }
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) serve(ctx context.Context, method, path string, req fakeRequest, out any) error {
	f.mu.Lock()
	route := method + " " + path
	f.calls = append(f.calls, route)
	h, ok := f.handlers[route]
	f.mu.Unlock()
	if !ok {
		return &apiclient.Error{Status: 404, Message: "Not found."}
	}
	result, err := h(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || result == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeAPI) Get(ctx context.Context, path string, query url.Values, out any) error {
	return f.serve(ctx, "GET", path, fakeRequest{Query: query}, out)
}

func (f *fakeAPI) Post(ctx context.Context, path string, body, out any) error {
	return f.serve(ctx, "POST", path, fakeRequest{Body: body}, out)
}

func (f *fakeAPI) Put(ctx context.Context, path string, body, out any) error {
	return f.serve(ctx, "PUT", path, fakeRequest{Body: body}, out)
}

func (f *fakeAPI) Patch(ctx context.Context, path string, body, out any) error {
	return f.serve(ctx, "PATCH", path, fakeRequest{Body: body}, out)
}

func (f *fakeAPI) Delete(ctx context.Context, path string, out any) error {
	return f.serve(ctx, "DELETE", path, fakeRequest{}, out)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func tagPage(tags ...models.Tag) map[string]any {
	return map[string]any{
		"results":     tags,
		"count":       len(tags),
		"page":        1,
		"page_size":   10,
		"total_pages": 1,
	}
}

func newTagSlice(t *testing.T) (*Store, *Slice[models.Tag], *fakeAPI, *recorder) {
	t.Helper()
	api := newFakeAPI()
	st := New(quietLogger())
	tags := Register[models.Tag](st, "tags", api, Endpoint{Collection: "/articles/tags/"})
	rec := &recorder{}
	t.Cleanup(st.Subscribe(rec.record))
	return st, tags, api, rec
}

func seedTags(t *testing.T, slice *Slice[models.Tag], api *fakeAPI, tags ...models.Tag) {
	t.Helper()
	api.on("GET", "/articles/tags/", api.respond(tagPage(tags...)))
	require.NoError(t, slice.List(context.Background(), models.ListParams{Page: 1, PageSize: 10}))
}

func names(tags []models.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag.Name)
	}
	return out
}

func TestListLoadingLifecycle(t *testing.T) {
	_, tags, api, rec := newTagSlice(t)

	var during State[models.Tag]
	api.on("GET", "/articles/tags/", func(ctx context.Context, req fakeRequest) (any, error) {
		during = tags.View()
		assert.Equal(t, "2", req.Query.Get("page"))
		return tagPage(models.Tag{ID: 1, Name: "Vedic"}), nil
	})
	require.NoError(t, tags.List(context.Background(), models.ListParams{Page: 2, PageSize: 10}))

	assert.True(t, during.Loading)
	view := tags.View()
	assert.False(t, view.Loading)
	assert.Equal(t, []string{"Vedic"}, names(view.Items))
	assert.Equal(t, models.Pagination{CurrentPage: 1, PageSize: 10, TotalCount: 1, TotalPages: 1}, view.Pagination)
	assert.Equal(t, []string{"tags/list/pending", "tags/list/fulfilled"}, rec.types())

	events := rec.all()
	assert.True(t, events[0].State.(State[models.Tag]).Loading)
	assert.False(t, events[1].State.(State[models.Tag]).Loading)
	assert.Equal(t, events[0].Seq, events[1].Seq)
}

func TestListFailureClearsLoadingAndSetsError(t *testing.T) {
	_, tags, api, rec := newTagSlice(t)
	seedTags(t, tags, api, models.Tag{ID: 1, Name: "Vedic"})

	api.on("GET", "/articles/tags/", func(context.Context, fakeRequest) (any, error) {
		return nil, &apiclient.Error{Status: 500, Message: "Database unavailable"}
	})
	err := tags.List(context.Background(), models.ListParams{Page: 2})

	require.Error(t, err)
	view := tags.View()
	assert.False(t, view.Loading)
	assert.Equal(t, "Database unavailable", view.Error)
	assert.Equal(t, []string{"Vedic"}, names(view.Items))
	assert.Equal(t, "tags/list/rejected", rec.types()[len(rec.types())-1])
}

func TestRejectedNeverTouchesCollectionOrSelected(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)
	seedTags(t, tags, api, models.Tag{ID: 1, Name: "Vedic"}, models.Tag{ID: 2, Name: "Tarot"})
	api.on("GET", "/articles/tags/1/", api.respond(models.Tag{ID: 1, Name: "Vedic"}))
	_, err := tags.Get(context.Background(), "1")
	require.NoError(t, err)
	before := tags.View()

	failing := func(context.Context, fakeRequest) (any, error) {
		return nil, &apiclient.Error{Status: 400, Message: "name: Already taken."}
	}
	api.on("POST", "/articles/tags/", failing)
	api.on("PUT", "/articles/tags/2/", failing)
	api.on("DELETE", "/articles/tags/2/", failing)

	_, err = tags.Create(context.Background(), models.Tag{Name: "Numerology"})
	assert.Error(t, err)
	_, err = tags.Update(context.Background(), "2", models.Tag{Name: "Cards"})
	assert.Error(t, err)
	assert.Error(t, tags.Delete(context.Background(), "2"))
	_, err = tags.Get(context.Background(), "99")
	assert.True(t, apiclient.IsNotFound(err))

	after := tags.View()
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Selected, after.Selected)
	assert.Equal(t, "Not found.", after.Error)
	assert.False(t, after.Loading)
}

func TestCreateAppendsExactlyOne(t *testing.T) {
	_, tags, api, rec := newTagSlice(t)
	seedTags(t, tags, api, models.Tag{ID: 1, Name: "Vedic"})

	api.on("POST", "/articles/tags/", func(_ context.Context, req fakeRequest) (any, error) {
		sent := req.Body.(models.Tag)
		return models.Tag{ID: 42, Name: sent.Name, Slug: "astrology"}, nil
	})
	created, err := tags.Create(context.Background(), models.Tag{Name: "Astrology"})

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	view := tags.View()
	assert.Len(t, view.Items, 2)
	assert.Equal(t, []string{"Vedic", "Astrology"}, names(view.Items))
	assert.Equal(t, "tags/create/fulfilled", rec.types()[len(rec.types())-1])
}

func TestCreateValidationFailsBeforeNetwork(t *testing.T) {
	_, tags, api, rec := newTagSlice(t)

	_, err := tags.Create(context.Background(), models.Tag{Name: ""})

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "name")
	assert.Empty(t, api.Calls())
	assert.Equal(t, []string{"tags/create/pending", "tags/create/rejected"}, rec.types())
	assert.Equal(t, "name: cannot be blank.", tags.View().Error)
}

func TestUpdateReplacesSelectedAndMatchingEntry(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)
	seedTags(t, tags, api, models.Tag{ID: 1, Name: "Vedic"}, models.Tag{ID: 2, Name: "Tarot"}, models.Tag{ID: 3, Name: "Vastu"})

	api.on("PUT", "/articles/tags/2/", api.respond(models.Tag{ID: 2, Name: "Tarot Cards"}))
	_, err := tags.Update(context.Background(), "2", models.Tag{Name: "Tarot Cards"})

	require.NoError(t, err)
	view := tags.View()
	assert.Equal(t, []string{"Vedic", "Tarot Cards", "Vastu"}, names(view.Items))
	require.NotNil(t, view.Selected)
	assert.Equal(t, "Tarot Cards", view.Selected.Name)
}

func TestUpdateUnknownIDOnlyReplacesSelected(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)
	seedTags(t, tags, api, models.Tag{ID: 1, Name: "Vedic"})

	api.on("PUT", "/articles/tags/7/", api.respond(models.Tag{ID: 7, Name: "Palmistry"}))
	_, err := tags.Update(context.Background(), "7", models.Tag{Name: "Palmistry"})

	require.NoError(t, err)
	view := tags.View()
	assert.Equal(t, []string{"Vedic"}, names(view.Items))
	require.NotNil(t, view.Selected)
	assert.Equal(t, "Palmistry", view.Selected.Name)
}

func TestPatchRequiresFields(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)

	_, err := tags.Patch(context.Background(), "1", nil)
	assert.Error(t, err)
	assert.Empty(t, api.Calls())

	api.on("PATCH", "/articles/tags/1/", func(_ context.Context, req fakeRequest) (any, error) {
		assert.Equal(t, map[string]any{"name": "Jyotish"}, req.Body)
		return models.Tag{ID: 1, Name: "Jyotish"}, nil
	})
	record, err := tags.Patch(context.Background(), "1", map[string]any{"name": "Jyotish"})
	require.NoError(t, err)
	assert.Equal(t, "Jyotish", record.Name)
	assert.Equal(t, "Jyotish", tags.View().Selected.Name)
}

func TestDeleteRemovesOnlyMatchingRecord(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)
	seedTags(t, tags, api, models.Tag{ID: 1, Name: "Vedic"}, models.Tag{ID: 2, Name: "Tarot"}, models.Tag{ID: 3, Name: "Vastu"})
	api.on("GET", "/articles/tags/2/", api.respond(models.Tag{ID: 2, Name: "Tarot"}))
	_, err := tags.Get(context.Background(), "2")
	require.NoError(t, err)

	api.on("DELETE", "/articles/tags/2/", api.respond(nil))
	require.NoError(t, tags.Delete(context.Background(), "2"))

	view := tags.View()
	assert.Equal(t, []models.Tag{{ID: 1, Name: "Vedic"}, {ID: 3, Name: "Vastu"}}, view.Items)
	assert.Nil(t, view.Selected)
	assert.ErrorIs(t, tags.Delete(context.Background(), ""), ErrMissingID)
}

func TestGetRefreshesCollectionEntry(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)
	seedTags(t, tags, api, models.Tag{ID: 1, Name: "Vedic"})

	api.on("GET", "/articles/tags/1/", api.respond(models.Tag{ID: 1, Name: "Vedic Astrology", Slug: "vedic-astrology"}))
	_, err := tags.Get(context.Background(), "1")

	require.NoError(t, err)
	view := tags.View()
	assert.Equal(t, "Vedic Astrology", view.Items[0].Name)
	assert.Equal(t, "vedic-astrology", view.Selected.Slug)
}

func TestStaleListResponseIsDiscarded(t *testing.T) {
	_, tags, api, rec := newTagSlice(t)

	release := make(chan struct{})
	started := make(chan struct{})
	api.on("GET", "/articles/tags/", func(_ context.Context, req fakeRequest) (any, error) {
		if req.Query.Get("search") == "ved" {
			close(started)
			<-release
			return tagPage(models.Tag{ID: 1, Name: "Vedic"}), nil
		}
		return tagPage(models.Tag{ID: 2, Name: "Vedic Numerology"}), nil
	})

	slow := make(chan error, 1)
	go func() {
		slow <- tags.List(context.Background(), models.ListParams{Search: "ved"})
	}()
	<-started
	require.NoError(t, tags.List(context.Background(), models.ListParams{Search: "vedic num"}))
	close(release)
	require.NoError(t, <-slow)

	view := tags.View()
	assert.Equal(t, []string{"Vedic Numerology"}, names(view.Items))
	assert.False(t, view.Loading)

	var stale int
	for _, e := range rec.all() {
		if e.Stale {
			stale++
		}
	}
	assert.Equal(t, 1, stale)
}

func TestStaleFailureDoesNotOverrideNewerStatus(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)

	release := make(chan struct{})
	started := make(chan struct{})
	api.on("GET", "/articles/tags/", func(_ context.Context, req fakeRequest) (any, error) {
		if req.Query.Get("page") == "1" {
			close(started)
			<-release
			return nil, &apiclient.Error{Status: 502, Message: "Bad Gateway"}
		}
		return tagPage(models.Tag{ID: 5, Name: "Tarot"}), nil
	})

	slow := make(chan error, 1)
	go func() { slow <- tags.List(context.Background(), models.ListParams{Page: 1}) }()
	<-started
	require.NoError(t, tags.List(context.Background(), models.ListParams{Page: 2}))
	close(release)
	assert.Error(t, <-slow)

	view := tags.View()
	assert.Empty(t, view.Error)
	assert.Equal(t, []string{"Tarot"}, names(view.Items))
}

func TestCloseCancelsInFlightRequests(t *testing.T) {
	st, tags, api, rec := newTagSlice(t)

	started := make(chan struct{})
	api.on("GET", "/articles/tags/", func(ctx context.Context, _ fakeRequest) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, &apiclient.Error{Err: ctx.Err()}
	})

	done := make(chan error, 1)
	go func() { done <- tags.List(context.Background(), models.ListParams{}) }()
	<-started
	st.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("list did not return after Close")
	}
	view := tags.View()
	assert.False(t, view.Loading)
	assert.Empty(t, view.Error)
	assert.Equal(t, "tags/list/aborted", rec.types()[len(rec.types())-1])

	assert.ErrorIs(t, tags.List(context.Background(), models.ListParams{}), ErrClosed)
}

func TestResetDiscardsInFlightMutation(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)

	release := make(chan struct{})
	started := make(chan struct{})
	api.on("POST", "/articles/tags/", func(context.Context, fakeRequest) (any, error) {
		close(started)
		<-release
		return models.Tag{ID: 9, Name: "Late"}, nil
	})

	done := make(chan error, 1)
	go func() {
		_, err := tags.Create(context.Background(), models.Tag{Name: "Late"})
		done <- err
	}()
	<-started
	tags.Reset()
	close(release)
	require.NoError(t, <-done)

	assert.Empty(t, tags.View().Items)
}

func TestDispatchByName(t *testing.T) {
	st, _, api, _ := newTagSlice(t)
	api.on("POST", "/articles/tags/", api.respond(models.Tag{ID: 3, Name: "Astrology"}))

	result, err := st.Dispatch(context.Background(), "tags", Action{Op: OpCreate, Payload: json.RawMessage(`{"name":"Astrology"}`)})

	require.NoError(t, err)
	view := result.(State[models.Tag])
	assert.Equal(t, []string{"Astrology"}, names(view.Items))

	_, err = st.Dispatch(context.Background(), "tags", Action{Op: OpCreate})
	assert.Error(t, err)
	_, err = st.Dispatch(context.Background(), "tags", Action{Op: "explode"})
	assert.ErrorIs(t, err, ErrUnknownOp)
	_, err = st.Dispatch(context.Background(), "missing", Action{Op: OpList})
	assert.Error(t, err)
}

func TestStoreCompositionAndRefresh(t *testing.T) {
	api := newFakeAPI()
	st := New(quietLogger())
	Register[models.Tag](st, "tags", api, Endpoint{Collection: "/articles/tags/"})
	Register[models.Planet](st, "planets", api, Endpoint{Collection: "/kundli/planets/"})
	api.on("GET", "/articles/tags/", api.respond(tagPage(models.Tag{ID: 1, Name: "Vedic"})))
	api.on("GET", "/kundli/planets/", api.respond([]models.Planet{{ID: 1, Name: "Sun"}, {ID: 2, Name: "Moon"}}))

	require.NoError(t, st.Refresh(context.Background(), models.ListParams{Page: 1}))

	assert.Equal(t, []string{"tags", "planets"}, st.Names())
	snapshot := st.Snapshot()
	assert.Len(t, snapshot["tags"].(State[models.Tag]).Items, 1)
	planets := snapshot["planets"].(State[models.Planet])
	assert.Len(t, planets.Items, 2)
	assert.Equal(t, 2, planets.Pagination.TotalCount)

	assert.Panics(t, func() {
		Register[models.Tag](st, "tags", api, Endpoint{Collection: "/articles/tags/"})
	})

	st.Reset()
	assert.Empty(t, st.Snapshot()["planets"].(State[models.Planet]).Items)
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	st, tags, api, _ := newTagSlice(t)
	var count int
	cancel := st.Subscribe(func(Event) { count++ })
	seedTags(t, tags, api)
	cancel()
	seedTags(t, tags, api)

	assert.Equal(t, 2, count)
}

func TestItemEndpointOverride(t *testing.T) {
	api := newFakeAPI()
	st := New(quietLogger())
	profile := Register[models.Profile](st, "profile", api, Endpoint{
		Collection: "/auth/profile/",
		Item:       func(string) string { return "/auth/profile/" },
	})
	api.on("GET", "/auth/profile/", api.respond(models.Profile{ID: 4, Email: "guru@example.com"}))

	record, err := profile.Get(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "guru@example.com", record.Email)
	assert.Equal(t, "4", profile.View().Selected.EntityID())
}

func TestUpdateUserWithoutPassword(t *testing.T) {
	api := newFakeAPI()
	st := New(quietLogger())
	users := Register[models.User](st, "users", api, Endpoint{Collection: "/users"})
	api.on("PUT", "/users/7/", func(_ context.Context, req fakeRequest) (any, error) {
		sent := req.Body.(models.User)
		assert.Empty(t, sent.Password)
		return models.User{ID: 7, Email: sent.Email, Role: sent.Role}, nil
	})

	record, err := users.Update(context.Background(), "7", models.User{Email: "a@b.co", Role: "editor"})

	require.NoError(t, err)
	assert.Equal(t, "editor", record.Role)
	assert.Equal(t, []string{"PUT /users/7/"}, api.Calls())

	_, err = users.Create(context.Background(), models.User{Email: "new@b.co", Role: "editor"})
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "password")
}

func TestRefreshKeepsLoadingWhenAnotherSliceFails(t *testing.T) {
	api := newFakeAPI()
	st := New(quietLogger())
	tags := Register[models.Tag](st, "tags", api, Endpoint{Collection: "/articles/tags/"})
	categories := Register[models.Category](st, "categories", api, Endpoint{Collection: "/articles/categories/"})

	failed := make(chan struct{})
	api.on("GET", "/articles/categories/", func(context.Context, fakeRequest) (any, error) {
		defer close(failed)
		return nil, &apiclient.Error{Status: 500, Message: "boom"}
	})
	api.on("GET", "/articles/tags/", func(ctx context.Context, _ fakeRequest) (any, error) {
		<-failed
		select {
		case <-ctx.Done():
			return nil, &apiclient.Error{Err: ctx.Err()}
		case <-time.After(100 * time.Millisecond):
			return tagPage(models.Tag{ID: 1, Name: "Vedic"}), nil
		}
	})

	err := st.Refresh(context.Background(), models.ListParams{Page: 1})

	require.Error(t, err)
	assert.Equal(t, 500, apiclient.StatusOf(err))
	assert.Equal(t, []string{"Vedic"}, names(tags.View().Items))
	assert.Equal(t, "boom", categories.View().Error)
}

func TestLateListDoesNotRestoreDeletedRecord(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)
	seedTags(t, tags, api, models.Tag{ID: 1, Name: "Vedic"}, models.Tag{ID: 2, Name: "Tarot"})

	release := make(chan struct{})
	started := make(chan struct{})
	api.on("GET", "/articles/tags/", func(context.Context, fakeRequest) (any, error) {
		close(started)
		<-release
		return tagPage(models.Tag{ID: 1, Name: "Vedic"}, models.Tag{ID: 2, Name: "Tarot"}), nil
	})
	api.on("DELETE", "/articles/tags/2/", api.respond(nil))

	slow := make(chan error, 1)
	go func() { slow <- tags.List(context.Background(), models.ListParams{Page: 1}) }()
	<-started
	require.NoError(t, tags.Delete(context.Background(), "2"))
	close(release)
	require.NoError(t, <-slow)

	view := tags.View()
	assert.Equal(t, []string{"Vedic"}, names(view.Items))
	assert.False(t, view.Loading)
}

func TestLateGetDoesNotOverrideUpdate(t *testing.T) {
	_, tags, api, _ := newTagSlice(t)
	seedTags(t, tags, api, models.Tag{ID: 2, Name: "Tarot"})

	release := make(chan struct{})
	started := make(chan struct{})
	api.on("GET", "/articles/tags/2/", func(context.Context, fakeRequest) (any, error) {
		close(started)
		<-release
		return models.Tag{ID: 2, Name: "Tarot"}, nil
	})
	api.on("PUT", "/articles/tags/2/", api.respond(models.Tag{ID: 2, Name: "Tarot Cards"}))

	slow := make(chan error, 1)
	go func() {
		_, err := tags.Get(context.Background(), "2")
		slow <- err
	}()
	<-started
	_, err := tags.Update(context.Background(), "2", models.Tag{Name: "Tarot Cards"})
	require.NoError(t, err)
	close(release)
	require.NoError(t, <-slow)

	view := tags.View()
	require.NotNil(t, view.Selected)
	assert.Equal(t, "Tarot Cards", view.Selected.Name)
	assert.Equal(t, []string{"Tarot Cards"}, names(view.Items))
}
