package console

import "sync"

// Navigator moves the UI to another route.
type Navigator interface {
	Navigate(route string)
}

// History is an in-memory Navigator that remembers visited routes.
type History struct {
	mu     sync.Mutex
	routes []string
}

func NewHistory(start string) *History {
	h := &History{}
	if start != "" {
		h.routes = append(h.routes, start)
	}
	return h
}

func (h *History) Navigate(route string) {
	h.mu.Lock()
	h.routes = append(h.routes, route)
	h.mu.Unlock()
}

// Current is the last route navigated to, "" before any.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.routes) == 0 {
		return ""
	}
	return h.routes[len(h.routes)-1]
}

// Back drops the current route and returns the previous one.
func (h *History) Back() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.routes) > 1 {
		h.routes = h.routes[:len(h.routes)-1]
	}
	if len(h.routes) == 0 {
		return ""
	}
	return h.routes[len(h.routes)-1]
}

func (h *History) Routes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.routes...)
}
