package console

import (
	"context"
	"strings"
	"sync"
	"time"

	"astro-admin-go/internal/apiclient"
	"astro-admin-go/internal/debounce"
	"astro-admin-go/internal/models"
	"astro-admin-go/internal/pagination"
	"astro-admin-go/internal/services"
	"astro-admin-go/internal/store"
)

// ListController keeps the filters of one list page. Search and filter
// edits re-fetch after the debounce interval; page changes fetch at once.
type ListController[T models.Entity] struct {
	slice  *store.Slice[T]
	banner *Banner
	ctx    context.Context

	mu       sync.Mutex
	params   models.ListParams
	debounce *debounce.Debouncer[models.ListParams]
}

// NewListController fetches through slice. ctx bounds the debounced
// fetches; cancel it when the page goes away.
func NewListController[T models.Entity](ctx context.Context, slice *store.Slice[T], banner *Banner, pageSize int, interval time.Duration) *ListController[T] {
	c := &ListController[T]{
		slice:  slice,
		banner: banner,
		ctx:    ctx,
		params: models.ListParams{Page: 1, PageSize: pageSize},
	}
	c.debounce = debounce.New(interval, func(params models.ListParams) {
		_ = c.fetch(c.ctx, params)
	})
	return c
}

func (c *ListController[T]) Params() models.ListParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Load fetches the current page immediately.
func (c *ListController[T]) Load(ctx context.Context) error {
	return c.fetch(ctx, c.Params())
}

func (c *ListController[T]) SetSearch(term string) {
	c.schedule(func(p *models.ListParams) { p.Search = services.CleanSearchTerm(term) })
}

func (c *ListController[T]) SetCategory(category string) {
	c.schedule(func(p *models.ListParams) { p.Category = strings.TrimSpace(category) })
}

func (c *ListController[T]) SetDateRange(after, before string) {
	c.schedule(func(p *models.ListParams) {
		p.CreatedAfter = strings.TrimSpace(after)
		p.CreatedBefore = strings.TrimSpace(before)
	})
}

func (c *ListController[T]) SetSort(field, order string) {
	c.schedule(func(p *models.ListParams) {
		p.SortBy = strings.TrimSpace(field)
		p.SortOrder = order
	})
}

// SetPage fetches page, clamped to the known page count, without waiting.
func (c *ListController[T]) SetPage(ctx context.Context, page int) error {
	total := c.slice.View().Pagination.TotalPages
	c.mu.Lock()
	c.params.Page = pagination.Clamp(page, total)
	params := c.params
	c.mu.Unlock()
	return c.fetch(ctx, params)
}

// Window is the page controls for the last fetched page.
func (c *ListController[T]) Window() []pagination.Item {
	p := c.slice.View().Pagination
	return pagination.Window(p.CurrentPage, p.TotalPages)
}

// Close drops a pending debounced fetch.
func (c *ListController[T]) Close() {
	c.debounce.Stop()
}

// schedule applies edit, resets to page 1 and debounces the fetch with the
// resulting filters.
func (c *ListController[T]) schedule(edit func(*models.ListParams)) {
	c.mu.Lock()
	edit(&c.params)
	c.params.Page = 1
	params := c.params
	c.mu.Unlock()
	c.debounce.Trigger(params)
}

func (c *ListController[T]) fetch(ctx context.Context, params models.ListParams) error {
	err := c.slice.List(ctx, params)
	if err != nil && c.banner != nil && !store.IsAborted(err) {
		c.banner.Error(apiclient.Message(err))
	}
	return err
}
