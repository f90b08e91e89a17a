package client

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numbers serves 1..total in pages, using the last number as the cursor.
func numbers(total int, cursors *[]string) PageFetcher[int] {
	return func(ctx context.Context, cursor string, limit int) ([]int, error) {
		*cursors = append(*cursors, cursor)

		start := 1
		if cursor != "" {
			last, err := strconv.Atoi(cursor)
			if err != nil {
				return nil, err
			}
			start = last + 1
		}

		var items []int
		for n := start; n <= total && len(items) < limit; n++ {
			items = append(items, n)
		}
		return items, nil
	}
}

func TestInfiniteQueryUsesLastItemAsCursor(t *testing.T) {
	var cursors []string
	query := NewInfiniteQuery(3, numbers(7, &cursors), strconv.Itoa)

	assert.True(t, query.HasNextPage())
	assert.False(t, query.Fetched())

	for query.HasNextPage() {
		require.NoError(t, query.FetchNextPage(context.Background()))
	}

	assert.Equal(t, []string{"", "3", "6"}, cursors)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, query.Items())
	assert.Len(t, query.Pages(), 3)
	assert.False(t, query.Empty())

	require.NoError(t, query.FetchNextPage(context.Background()))
	assert.Len(t, cursors, 3)
}

func TestInfiniteQueryFullLastPageFetchesEmptyPage(t *testing.T) {
	var cursors []string
	query := NewInfiniteQuery(3, numbers(6, &cursors), strconv.Itoa)

	for query.HasNextPage() {
		require.NoError(t, query.FetchNextPage(context.Background()))
	}

	assert.Equal(t, []string{"", "3", "6"}, cursors)
	pages := query.Pages()
	require.Len(t, pages, 3)
	assert.Empty(t, pages[2])
	assert.Equal(t, "", query.NextCursor())
}

func TestInfiniteQueryEmptyFeed(t *testing.T) {
	var cursors []string
	query := NewInfiniteQuery(9, numbers(0, &cursors), strconv.Itoa)

	require.NoError(t, query.FetchNextPage(context.Background()))

	assert.True(t, query.Fetched())
	assert.True(t, query.Empty())
	assert.False(t, query.HasNextPage())
	assert.Empty(t, query.Items())
}

func TestInfiniteQueryKeepsPagesOnError(t *testing.T) {
	failing := errors.New("offline")
	calls := 0
	query := NewInfiniteQuery(2, func(ctx context.Context, cursor string, limit int) ([]int, error) {
		calls++
		if calls > 1 {
			return nil, failing
		}
		return []int{1, 2}, nil
	}, strconv.Itoa)

	require.NoError(t, query.FetchNextPage(context.Background()))
	assert.ErrorIs(t, query.FetchNextPage(context.Background()), failing)

	assert.Equal(t, []int{1, 2}, query.Items())
	assert.True(t, query.HasNextPage())
	assert.Equal(t, "2", query.NextCursor())

	query.Reset()
	assert.False(t, query.Fetched())
	assert.Equal(t, "", query.NextCursor())
}
