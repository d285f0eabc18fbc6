package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"astro-admin-go/internal/apiclient"
	"astro-admin-go/internal/models"
	"astro-admin-go/internal/services"
	"astro-admin-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tagBackend is an in-memory tags endpoint.
type tagBackend struct {
	mu       sync.Mutex
	tags     []models.Tag
	nextID   int64
	searches []string
	requests []string
}

func (b *tagBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			b.requests = append(b.requests, req.Method+" "+req.URL.Path)
			b.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/articles/tags/", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.searches = append(b.searches, req.URL.Query().Get("search"))
		writeJSON(w, 200, map[string]any{"results": b.tags, "count": len(b.tags), "page": 1, "page_size": 10})
	})
	r.Post("/articles/tags/", func(w http.ResponseWriter, req *http.Request) {
		var tag models.Tag
		_ = json.NewDecoder(req.Body).Decode(&tag)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		tag.ID = 100 + b.nextID
		b.tags = append(b.tags, tag)
		writeJSON(w, 201, tag)
	})
	r.Delete("/articles/tags/{id}/", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") == "13" {
			writeJSON(w, 409, map[string]string{"detail": "Tag is in use."})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func (b *tagBackend) searchLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.searches...)
}

func (b *tagBackend) requestLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTags(t *testing.T, seed ...models.Tag) (*store.Slice[models.Tag], *tagBackend) {
	t.Helper()
	backend := &tagBackend{tags: seed}
	server := httptest.NewServer(backend.routes())
	t.Cleanup(server.Close)
	log, _ := test.NewNullLogger()
	catalogue := services.NewCatalogue(store.New(log), apiclient.New(server.URL, apiclient.WithLogger(log)))
	return catalogue.Tags, backend
}

func TestCreateTagShowsBannerThenClears(t *testing.T) {
	tags, _ := newTags(t, models.Tag{ID: 1, Name: "Vedic"})
	require.NoError(t, tags.List(context.Background(), models.ListParams{}))
	banner := NewBanner(60 * time.Millisecond)
	form := NewCreateForm(tags, banner)

	created, err := form.Submit(context.Background(), models.Tag{Name: "Astrology"})

	require.NoError(t, err)
	assert.Equal(t, int64(101), created.ID)
	items := tags.View().Items
	require.Len(t, items, 2)
	assert.Equal(t, "Astrology", items[1].Name)
	assert.Equal(t, int64(101), items[1].ID)

	notice := banner.Current()
	assert.True(t, notice.Visible)
	assert.Equal(t, KindSuccess, notice.Kind)
	assert.Eventually(t, func() bool { return !banner.Current().Visible }, time.Second, 10*time.Millisecond)
}

func TestFormFieldErrorsBlockDispatch(t *testing.T) {
	tags, backend := newTags(t)
	banner := NewBanner(time.Second)
	form := NewCreateForm(tags, banner)

	_, err := form.Submit(context.Background(), models.Tag{Name: "", Slug: "Not A Slug"})

	require.Error(t, err)
	fields := form.FieldErrors()
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "slug")
	assert.Empty(t, backend.requestLog())
	assert.False(t, banner.Current().Visible)
}

func TestEditFormUpdates(t *testing.T) {
	tags, _ := newTags(t)
	form := NewEditForm(tags, NewBanner(time.Second), "7")
	assert.True(t, form.Editing())

	// The fake backend has no PUT route, so the error surfaces on the banner.
	_, err := form.Submit(context.Background(), models.Tag{Name: "Tarot"})

	assert.Error(t, err)
	assert.Equal(t, KindError, form.banner.Current().Kind)
}

func TestSearchIsDebounced(t *testing.T) {
	tags, backend := newTags(t, models.Tag{ID: 1, Name: "Vedic"})
	list := NewListController(context.Background(), tags, nil, 10, 40*time.Millisecond)
	t.Cleanup(list.Close)

	for _, typed := range []string{"v", "ve", "ved", "vedi", "  vedic  "} {
		list.SetSearch(typed)
	}

	assert.Eventually(t, func() bool { return len(backend.searchLog()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, []string{"vedic"}, backend.searchLog())
	assert.Equal(t, 1, list.Params().Page)
}

func TestSetPageFetchesImmediately(t *testing.T) {
	seed := make([]models.Tag, 0, 3)
	for i := 1; i <= 3; i++ {
		seed = append(seed, models.Tag{ID: int64(i), Name: "t"})
	}
	tags, backend := newTags(t, seed...)
	list := NewListController(context.Background(), tags, nil, 10, time.Hour)
	t.Cleanup(list.Close)

	require.NoError(t, list.Load(context.Background()))
	require.NoError(t, list.SetPage(context.Background(), 9))

	assert.Len(t, backend.searchLog(), 2)
	assert.Equal(t, 1, list.Params().Page)
	assert.Len(t, list.Window(), 1)
}

func TestDeleteDialogCancelThenConfirm(t *testing.T) {
	tags, backend := newTags(t, models.Tag{ID: 1, Name: "Vedic"}, models.Tag{ID: 2, Name: "Tarot"}, models.Tag{ID: 3, Name: "Vastu"})
	require.NoError(t, tags.List(context.Background(), models.ListParams{}))
	history := NewHistory("/tags/2")
	banner := NewBanner(time.Second)
	dialog := NewDeleteDialog(tags, history, services.ListRoute(services.SliceTags), banner)

	dialog.Open("2")
	assert.True(t, dialog.IsOpen())
	dialog.Cancel()
	assert.False(t, dialog.IsOpen())
	assert.Len(t, tags.View().Items, 3)
	assert.Equal(t, "/tags/2", history.Current())
	assert.ErrorIs(t, dialog.Confirm(context.Background()), ErrDialogClosed)

	dialog.Open("2")
	require.NoError(t, dialog.Confirm(context.Background()))

	assert.False(t, dialog.IsOpen())
	assert.Equal(t, []models.Tag{{ID: 1, Name: "Vedic"}, {ID: 3, Name: "Vastu"}}, tags.View().Items)
	assert.Equal(t, "/tags", history.Current())
	assert.Contains(t, backend.requestLog(), "DELETE /articles/tags/2/")
}

func TestDeleteDialogFailureStaysOpen(t *testing.T) {
	tags, _ := newTags(t, models.Tag{ID: 13, Name: "Busy"})
	require.NoError(t, tags.List(context.Background(), models.ListParams{}))
	history := NewHistory("/tags/13")
	banner := NewBanner(time.Second)
	dialog := NewDeleteDialog(tags, history, "/tags", banner)

	dialog.Open("13")
	err := dialog.Confirm(context.Background())

	assert.Error(t, err)
	assert.True(t, dialog.IsOpen())
	assert.Equal(t, "Tag is in use.", banner.Current().Message)
	assert.Len(t, tags.View().Items, 1)
	assert.Equal(t, "/tags/13", history.Current())
}

func TestBannerReplaceAndClear(t *testing.T) {
	banner := NewBanner(time.Hour)
	var seen []Notice
	banner.OnChange(func(n Notice) { seen = append(seen, n) })

	banner.Info("one")
	banner.Error("two")
	assert.Equal(t, "two", banner.Current().Message)
	banner.Clear()

	assert.False(t, banner.Current().Visible)
	require.Len(t, seen, 3)
	assert.False(t, seen[2].Visible)
}

func TestHistoryBack(t *testing.T) {
	history := NewHistory("/articles")
	history.Navigate("/articles/4")
	assert.Equal(t, "/articles", history.Back())
	assert.Equal(t, "/articles", history.Back())
	assert.Equal(t, []string{"/articles"}, history.Routes())
}
