package client

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Query keys. A key is the operation followed by its parameters, joined with
// ":", so invalidating an operation covers every parameter set.
const (
	QueryRecentPosts   = "getRecentPosts"
	QueryInfinitePosts = "getInfinitePosts"
	QuerySearchPosts   = "searchPosts"
	QueryPostById      = "getPostById"
	QueryUserPosts     = "getUserPosts"
	QuerySavedPosts    = "getSavedPosts"
	QueryCurrentUser   = "getCurrentUser"
	QueryUsers         = "getUsers"
	QueryUserById      = "getUserById"
)

func QueryKey(operation string, params ...string) string {
	return strings.Join(append([]string{operation}, params...), ":")
}

type queryEntry struct {
	value any
	stale bool
}

// QueryClient caches query results in memory. Entries stay fresh until they
// are invalidated; concurrent loads of one key share a single call.
type QueryClient struct {
	mu         sync.Mutex
	entries    map[string]*queryEntry
	generation uint64
	group      singleflight.Group
}

func NewQueryClient() *QueryClient {
	return &QueryClient{entries: map[string]*queryEntry{}}
}

// Fetch returns the fresh cached value for key or loads it. Failed loads are
// not cached. A shared load keeps running when the caller that started it
// gives up; every caller returns as soon as its own ctx is done.
func Fetch[T any](ctx context.Context, queries *QueryClient, key string, loader func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	queries.mu.Lock()
	entry, ok := queries.entries[key]
	if ok && !entry.stale {
		value, typed := entry.value.(T)
		if typed {
			queries.mu.Unlock()
			return value, nil
		}
	}
	generation := queries.generation
	queries.mu.Unlock()

	err := ctx.Err()
	if err != nil {
		return zero, err
	}

	loads := queries.group.DoChan(key, func() (interface{}, error) {
		value, err := loader(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		queries.mu.Lock()
		// An invalidation during the load makes the result stale on arrival.
		queries.entries[key] = &queryEntry{value: value, stale: queries.generation != generation}
		queries.mu.Unlock()

		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case result := <-loads:
		if result.Err != nil {
			return zero, result.Err
		}

		value, _ := result.Val.(T)
		return value, nil
	}
}

// Invalidate marks every entry whose key is one of operations, or starts with
// it followed by ":", as stale.
func (queries *QueryClient) Invalidate(operations ...string) {
	queries.mu.Lock()
	defer queries.mu.Unlock()

	queries.generation++
	for key, entry := range queries.entries {
		for _, operation := range operations {
			if key == operation || strings.HasPrefix(key, operation+":") {
				entry.stale = true
				break
			}
		}
	}
}

func (queries *QueryClient) IsStale(key string) bool {
	queries.mu.Lock()
	defer queries.mu.Unlock()

	entry, ok := queries.entries[key]
	return !ok || entry.stale
}

// Clear drops every entry.
func (queries *QueryClient) Clear() {
	queries.mu.Lock()
	defer queries.mu.Unlock()

	queries.generation++
	queries.entries = map[string]*queryEntry{}
}
