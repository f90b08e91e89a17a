package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExploreSource struct {
	mu        sync.Mutex
	posts     []model.PostResponse
	results   map[string][]model.PostResponse
	pageCalls int
	searches  []string
}

func (source *stubExploreSource) GetInfinitePosts(ctx context.Context, cursor string, limit int) (model.PostListResponse, error) {
	source.mu.Lock()
	defer source.mu.Unlock()
	source.pageCalls++

	start := 0
	if cursor != "" {
		for i, post := range source.posts {
			if post.Id.String() == cursor {
				start = i + 1
			}
		}
	}

	end := min(start+limit, len(source.posts))
	return model.PostListResponse{Data: source.posts[start:end]}, nil
}

func (source *stubExploreSource) SearchPosts(ctx context.Context, searchTerm string) (model.PostListResponse, error) {
	source.mu.Lock()
	defer source.mu.Unlock()
	source.searches = append(source.searches, searchTerm)
	return model.PostListResponse{Data: source.results[searchTerm]}, nil
}

func (source *stubExploreSource) calls() (int, []string) {
	source.mu.Lock()
	defer source.mu.Unlock()
	return source.pageCalls, append([]string(nil), source.searches...)
}

func makePosts(n int) []model.PostResponse {
	posts := make([]model.PostResponse, n)
	for i := range posts {
		posts[i] = model.PostResponse{Id: uuid.New()}
	}
	return posts
}

func TestExploreEmptyFeedShowsEndOfPosts(t *testing.T) {
	explore := NewExplore(context.Background(), &stubExploreSource{}, time.Millisecond)
	defer explore.Close()

	assert.Equal(t, ViewLoading, explore.State())

	require.NoError(t, explore.Load(context.Background()))
	assert.Equal(t, ViewEndOfPosts, explore.State())
	assert.Equal(t, "End of posts", explore.State().String())
	assert.False(t, explore.ShowsLoadMore())
}

func TestExplorePagesUntilShortPage(t *testing.T) {
	source := &stubExploreSource{posts: makePosts(ExplorePageSize + 2)}
	explore := NewExplore(context.Background(), source, time.Millisecond)
	defer explore.Close()

	require.NoError(t, explore.Load(context.Background()))
	require.NoError(t, explore.Load(context.Background()))
	assert.Equal(t, ViewPosts, explore.State())
	assert.True(t, explore.ShowsLoadMore())

	require.NoError(t, explore.ReachedEnd(context.Background()))
	assert.Len(t, explore.Feed.Items(), ExplorePageSize+2)
	assert.False(t, explore.ShowsLoadMore())

	require.NoError(t, explore.ReachedEnd(context.Background()))
	pageCalls, _ := source.calls()
	assert.Equal(t, 2, pageCalls)
}

func TestExploreSearchSuppressesPaging(t *testing.T) {
	source := &stubExploreSource{
		posts:   makePosts(ExplorePageSize * 2),
		results: map[string][]model.PostResponse{"sunset": makePosts(2)},
	}
	explore := NewExplore(context.Background(), source, 10*time.Millisecond)
	defer explore.Close()

	require.NoError(t, explore.Load(context.Background()))

	explore.SetSearchValue("sun")
	explore.SetSearchValue("sunset")
	assert.Equal(t, ViewLoading, explore.State())
	assert.False(t, explore.ShowsLoadMore())

	require.NoError(t, explore.ReachedEnd(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, explore.WaitSearch(ctx))

	pageCalls, searches := source.calls()
	assert.Equal(t, 1, pageCalls)
	assert.Equal(t, []string{"sunset"}, searches)

	results, err := explore.SearchResults()
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, ViewSearchResults, explore.State())

	explore.SetSearchValue("")
	assert.Equal(t, ViewPosts, explore.State())
	assert.True(t, explore.ShowsLoadMore())
}

func TestExploreSearchWithoutMatches(t *testing.T) {
	explore := NewExplore(context.Background(), &stubExploreSource{}, time.Millisecond)
	defer explore.Close()

	explore.SetSearchValue("nothing")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, explore.WaitSearch(ctx))

	assert.Equal(t, ViewNoResults, explore.State())
	assert.Equal(t, "No results found", explore.State().String())
}
