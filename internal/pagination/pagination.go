// Package pagination builds the page controls shown under list views.
package pagination

import (
	"encoding/json"
	"strconv"
)

// WindowSize is how many numbered pages are shown around the current one.
const WindowSize = 5

// Item is one control: a page number, or an ellipsis when Page is 0.
type Item struct {
	Page    int  `json:"page,omitempty"`
	Current bool `json:"current,omitempty"`
}

func (i Item) Ellipsis() bool { return i.Page == 0 }

func (i Item) String() string {
	if i.Ellipsis() {
		return "..."
	}
	return strconv.Itoa(i.Page)
}

// MarshalJSON renders pages as numbers and gaps as "...".
func (i Item) MarshalJSON() ([]byte, error) {
	if i.Ellipsis() {
		return json.Marshal(i.String())
	}
	return json.Marshal(i.Page)
}

// Window returns the controls for page current of total. current is
// clamped to [1, total]; the window is centred on it and shifted inward at
// either end. Page 1 and the last page are always present, with an
// ellipsis when a gap separates them from the window.
func Window(current, total int) []Item {
	if total < 1 {
		return nil
	}
	current = clamp(current, 1, total)
	start := current - WindowSize/2
	end := start + WindowSize - 1
	if start < 1 {
		start, end = 1, WindowSize
	}
	if end > total {
		end = total
		start = max(1, total-WindowSize+1)
	}

	items := make([]Item, 0, WindowSize+4)
	if start > 1 {
		items = append(items, Item{Page: 1})
		if start > 2 {
			items = append(items, Item{})
		}
	}
	for page := start; page <= end; page++ {
		items = append(items, Item{Page: page, Current: page == current})
	}
	if end < total {
		if end < total-1 {
			items = append(items, Item{})
		}
		items = append(items, Item{Page: total})
	}
	return items
}

// Pages lists the page numbers in items, 0 standing for an ellipsis.
func Pages(items []Item) []int {
	pages := make([]int, len(items))
	for i, item := range items {
		pages[i] = item.Page
	}
	return pages
}

// Clamp keeps a requested page inside [1, total]; total 0 yields 1.
func Clamp(page, total int) int {
	if total < 1 {
		return 1
	}
	return clamp(page, 1, total)
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
