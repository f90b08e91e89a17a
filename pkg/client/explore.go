package client

import (
	"context"
	"sync"
	"time"

	"github.com/ferdian3456/snapgram/internal/model"
)

type ViewState int

const (
	ViewLoading ViewState = iota
	ViewPosts
	ViewEndOfPosts
	ViewSearchResults
	ViewNoResults
)

func (state ViewState) String() string {
	switch state {
	case ViewLoading:
		return "Loading"
	case ViewPosts:
		return "Posts"
	case ViewEndOfPosts:
		return "End of posts"
	case ViewSearchResults:
		return "Search results"
	case ViewNoResults:
		return "No results found"
	default:
		return "Unknown"
	}
}

// ExploreSource is the part of the API the explore view reads from. Both
// *Client and *Queries satisfy it.
type ExploreSource interface {
	GetInfinitePosts(ctx context.Context, cursor string, limit int) (model.PostListResponse, error)
	SearchPosts(ctx context.Context, searchTerm string) (model.PostListResponse, error)
}

// Explore is the state of the explore view: a paginated grid of posts, and a
// search box that replaces the grid with results while it holds any text.
// Page fetches are suppressed while searching.
type Explore struct {
	Feed *InfiniteQuery[model.PostResponse]

	source    ExploreSource
	debouncer *Debouncer
	ctx       context.Context

	mu          sync.Mutex
	searchValue string
	searching   bool
	results     []model.PostResponse
	searchErr   error
	searchDone  chan struct{}
}

// NewExplore builds the view. Debounced searches run with ctx.
func NewExplore(ctx context.Context, source ExploreSource, debounceDelay time.Duration) *Explore {
	explore := &Explore{
		source:    source,
		debouncer: NewDebouncer(debounceDelay),
		ctx:       ctx,
	}

	explore.Feed = NewInfiniteQuery(ExplorePageSize, func(ctx context.Context, cursor string, limit int) ([]model.PostResponse, error) {
		response, err := source.GetInfinitePosts(ctx, cursor, limit)
		return response.Data, err
	}, func(post model.PostResponse) string {
		return post.Id.String()
	})

	return explore
}

// Load fetches the first page if none has been fetched.
func (explore *Explore) Load(ctx context.Context) error {
	if explore.Feed.Fetched() {
		return nil
	}
	return explore.Feed.FetchNextPage(ctx)
}

// ReachedEnd is called when the end of the grid scrolls into view. It fetches
// the next page unless a search is active or the feed is exhausted.
func (explore *Explore) ReachedEnd(ctx context.Context) error {
	if explore.SearchValue() != "" {
		return nil
	}
	return explore.Feed.FetchNextPage(ctx)
}

// ShowsLoadMore reports whether the view should render the "load more"
// sentinel below the grid.
func (explore *Explore) ShowsLoadMore() bool {
	return explore.SearchValue() == "" && explore.Feed.HasNextPage()
}

func (explore *Explore) SearchValue() string {
	explore.mu.Lock()
	defer explore.mu.Unlock()
	return explore.searchValue
}

// SetSearchValue updates the search box. A non-empty value schedules a search
// after the debounce delay; an empty value leaves search mode.
func (explore *Explore) SetSearchValue(value string) {
	explore.mu.Lock()
	defer explore.mu.Unlock()

	explore.searchValue = value
	explore.results = nil
	explore.searchErr = nil

	if value == "" {
		explore.debouncer.Stop()
		explore.searching = false
		explore.searchDone = nil
		return
	}

	explore.searching = true
	done := make(chan struct{})
	explore.searchDone = done

	explore.debouncer.Trigger(func() {
		defer close(done)
		response, err := explore.source.SearchPosts(explore.ctx, value)

		explore.mu.Lock()
		defer explore.mu.Unlock()

		// A newer value owns the results.
		if explore.searchValue != value {
			return
		}
		explore.searching = false
		explore.results = response.Data
		explore.searchErr = err
	})
}

// WaitSearch blocks until the search scheduled by the last SetSearchValue
// call has finished or ctx is done.
func (explore *Explore) WaitSearch(ctx context.Context) error {
	explore.mu.Lock()
	done := explore.searchDone
	explore.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (explore *Explore) SearchResults() ([]model.PostResponse, error) {
	explore.mu.Lock()
	defer explore.mu.Unlock()
	return explore.results, explore.searchErr
}

func (explore *Explore) State() ViewState {
	explore.mu.Lock()
	searchValue := explore.searchValue
	searching := explore.searching
	results := len(explore.results)
	explore.mu.Unlock()

	if searchValue != "" {
		switch {
		case searching:
			return ViewLoading
		case results > 0:
			return ViewSearchResults
		default:
			return ViewNoResults
		}
	}

	switch {
	case !explore.Feed.Fetched():
		return ViewLoading
	case explore.Feed.Empty():
		return ViewEndOfPosts
	default:
		return ViewPosts
	}
}

// Close cancels a pending search.
func (explore *Explore) Close() {
	explore.debouncer.Stop()
}
