package models

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Entity is anything a slice can hold in its table.
type Entity interface {
	EntityID() string
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
}

// Page is one list response. The backend is not consistent about envelope
// names, so UnmarshalJSON accepts every spelling seen in the wild.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
	// Derived is true when TotalPages was computed from TotalCount and
	// PageSize because the response did not carry it.
	Derived bool
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		p.Items = items
		p.Pagination = Pagination{CurrentPage: 1, PageSize: len(items), TotalCount: len(items), TotalPages: 1}
		return nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	items := []T{}
	for _, key := range []string{"results", "items", "data"} {
		if raw, ok := envelope[key]; ok && !isNull(raw) {
			if err := json.Unmarshal(raw, &items); err != nil {
				return err
			}
			break
		}
	}
	p.Items = items
	p.Pagination = Pagination{
		CurrentPage: firstInt(envelope, "currentPage", "current_page", "page"),
		PageSize:    firstInt(envelope, "pageSize", "page_size"),
		TotalCount:  firstInt(envelope, "totalCount", "total_count", "count", "total"),
		TotalPages:  firstInt(envelope, "totalPages", "total_pages"),
	}
	if p.Pagination.CurrentPage < 1 {
		p.Pagination.CurrentPage = 1
	}
	if _, ok := lookup(envelope, "totalCount", "total_count", "count", "total"); !ok {
		p.Pagination.TotalCount = len(items)
	}
	if p.Pagination.TotalPages == 0 {
		p.Derived = true
		p.Pagination.TotalPages = pagesFor(p.Pagination.TotalCount, p.Pagination.PageSize, len(items))
	}
	return nil
}

func pagesFor(total, size, fallback int) int {
	if size <= 0 {
		size = fallback
	}
	if total <= 0 || size <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

func lookup(envelope map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		if raw, ok := envelope[key]; ok && !isNull(raw) {
			return raw, true
		}
	}
	return nil, false
}

func firstInt(envelope map[string]json.RawMessage, keys ...string) int {
	raw, ok := lookup(envelope, keys...)
	if !ok {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var text string
		if json.Unmarshal(raw, &text) != nil {
			return 0
		}
		n = json.Number(text)
	}
	value, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0
	}
	return int(value)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// ListParams are the pagination and filter inputs of every List call.
type ListParams struct {
	Page          int               `json:"page,omitempty"`
	PageSize      int               `json:"pageSize,omitempty"`
	Search        string            `json:"search,omitempty"`
	Category      string            `json:"category,omitempty"`
	SortBy        string            `json:"sortBy,omitempty"`
	SortOrder     string            `json:"sortOrder,omitempty"`
	CreatedAfter  string            `json:"createdAfter,omitempty"`
	CreatedBefore string            `json:"createdBefore,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

func (p ListParams) Query() url.Values {
	query := url.Values{}
	if p.Page > 0 {
		query.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(p.PageSize))
	}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			query.Set(key, value)
		}
	}
	set("search", p.Search)
	set("category", p.Category)
	set("sort_by", p.SortBy)
	if p.SortBy != "" {
		order := strings.ToLower(strings.TrimSpace(p.SortOrder))
		if order != "asc" && order != "desc" {
			order = "asc"
		}
		query.Set("sort_order", order)
	}
	set("created_after", p.CreatedAfter)
	set("created_before", p.CreatedBefore)
	for key, value := range p.Extra {
		set(key, value)
	}
	return query
}

// ParseListParams reads ListParams back from a query string, accepting the
// camelCase spellings the browser client sends as well.
func ParseListParams(query url.Values, defaultPageSize int) ListParams {
	pick := func(keys ...string) string {
		for _, key := range keys {
			if value := strings.TrimSpace(query.Get(key)); value != "" {
				return value
			}
		}
		return ""
	}
	params := ListParams{
		Page:          atoiOr(pick("page"), 1),
		PageSize:      atoiOr(pick("page_size", "pageSize"), defaultPageSize),
		Search:        pick("search"),
		Category:      pick("category"),
		SortBy:        pick("sort_by", "sortBy"),
		SortOrder:     pick("sort_order", "sortOrder"),
		CreatedAfter:  pick("created_after", "createdAfter"),
		CreatedBefore: pick("created_before", "createdBefore"),
	}
	if params.PageSize > 100 {
		params.PageSize = 100
	}
	return params
}

func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
