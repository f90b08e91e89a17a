package client

import (
	"context"
	"slices"
	"sync"
)

// Page sizes for the home feed and the explore grid.
const (
	FeedPageSize    = 20
	ExplorePageSize = 9
)

// PageFetcher loads up to limit items that come after cursor. An empty cursor
// asks for the first page.
type PageFetcher[T any] func(ctx context.Context, cursor string, limit int) ([]T, error)

// InfiniteQuery accumulates pages of a cursor-paginated list. The cursor for
// the next page is the id of the last item received.
type InfiniteQuery[T any] struct {
	PageSize int

	fetch    PageFetcher[T]
	cursorOf func(T) string

	fetchMu sync.Mutex
	mu      sync.RWMutex
	pages   [][]T
}

func NewInfiniteQuery[T any](pageSize int, fetch PageFetcher[T], cursorOf func(T) string) *InfiniteQuery[T] {
	return &InfiniteQuery[T]{
		PageSize: pageSize,
		fetch:    fetch,
		cursorOf: cursorOf,
	}
}

// HasNextPage is true until a page shorter than PageSize arrives.
func (query *InfiniteQuery[T]) HasNextPage() bool {
	query.mu.RLock()
	defer query.mu.RUnlock()
	return query.hasNextPage()
}

func (query *InfiniteQuery[T]) hasNextPage() bool {
	if len(query.pages) == 0 {
		return true
	}
	last := query.pages[len(query.pages)-1]
	return len(last) > 0 && len(last) >= query.PageSize
}

// NextCursor is the cursor FetchNextPage will send.
func (query *InfiniteQuery[T]) NextCursor() string {
	query.mu.RLock()
	defer query.mu.RUnlock()
	return query.nextCursor()
}

func (query *InfiniteQuery[T]) nextCursor() string {
	if len(query.pages) == 0 {
		return ""
	}
	last := query.pages[len(query.pages)-1]
	if len(last) == 0 {
		return ""
	}
	return query.cursorOf(last[len(last)-1])
}

// FetchNextPage loads the page after the last one. It does nothing once the
// list is exhausted. Calls are serialized so two callers never load the same
// page twice.
func (query *InfiniteQuery[T]) FetchNextPage(ctx context.Context) error {
	query.fetchMu.Lock()
	defer query.fetchMu.Unlock()

	query.mu.RLock()
	hasNext := query.hasNextPage()
	cursor := query.nextCursor()
	query.mu.RUnlock()

	if !hasNext {
		return nil
	}

	items, err := query.fetch(ctx, cursor, query.PageSize)
	if err != nil {
		return err
	}

	query.mu.Lock()
	query.pages = append(query.pages, items)
	query.mu.Unlock()

	return nil
}

// Fetched reports whether at least one page has arrived.
func (query *InfiniteQuery[T]) Fetched() bool {
	query.mu.RLock()
	defer query.mu.RUnlock()
	return len(query.pages) > 0
}

func (query *InfiniteQuery[T]) Pages() [][]T {
	query.mu.RLock()
	defer query.mu.RUnlock()

	pages := make([][]T, len(query.pages))
	for i, page := range query.pages {
		pages[i] = slices.Clone(page)
	}
	return pages
}

// Items returns every item of every page in order.
func (query *InfiniteQuery[T]) Items() []T {
	query.mu.RLock()
	defer query.mu.RUnlock()

	var items []T
	for _, page := range query.pages {
		items = append(items, page...)
	}
	return items
}

// Empty reports whether pages were fetched and every one of them was empty.
func (query *InfiniteQuery[T]) Empty() bool {
	query.mu.RLock()
	defer query.mu.RUnlock()

	if len(query.pages) == 0 {
		return false
	}
	for _, page := range query.pages {
		if len(page) > 0 {
			return false
		}
	}
	return true
}

// Reset drops every page so the next fetch starts from the beginning.
func (query *InfiniteQuery[T]) Reset() {
	query.fetchMu.Lock()
	defer query.fetchMu.Unlock()

	query.mu.Lock()
	query.pages = nil
	query.mu.Unlock()
}
