package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/ferdian3456/snapgram/internal/model"

	"github.com/google/uuid"
)

var ErrActionPending = errors.New("client: previous action on this post is still pending")

// PostActions is the part of the API PostStats writes through. *Queries
// satisfies it and refreshes the affected queries after each success.
type PostActions interface {
	LikePost(ctx context.Context, postId uuid.UUID) (model.PostLikesResponse, error)
	UnlikePost(ctx context.Context, postId uuid.UUID) (model.PostLikesResponse, error)
	SavePost(ctx context.Context, postId uuid.UUID) (model.SaveResponse, error)
	DeleteSave(ctx context.Context, saveId uuid.UUID) error
}

// PostStats holds the like set and saved flag shown for one post to one user.
// Toggles update local state at once; if the server call fails the previous
// state is restored and the error returned.
type PostStats struct {
	PostId uuid.UUID
	UserId uuid.UUID

	actions PostActions

	mu          sync.Mutex
	likes       []uuid.UUID
	saved       bool
	saveId      uuid.UUID
	likePending bool
	savePending bool
}

// NewPostStats starts from the post's like list and the user's saves.
func NewPostStats(actions PostActions, post model.PostResponse, userId uuid.UUID, saves []model.SaveResponse) *PostStats {
	stats := &PostStats{
		PostId:  post.Id,
		UserId:  userId,
		actions: actions,
		likes:   uniqueIds(post.Likes),
	}

	for _, save := range saves {
		if save.PostId == post.Id {
			stats.saved = true
			stats.saveId = save.Id
			break
		}
	}

	return stats
}

func uniqueIds(ids []uuid.UUID) []uuid.UUID {
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}
	return unique
}

func (stats *PostStats) Likes() []uuid.UUID {
	stats.mu.Lock()
	defer stats.mu.Unlock()
	return slices.Clone(stats.likes)
}

func (stats *PostStats) LikeCount() int {
	stats.mu.Lock()
	defer stats.mu.Unlock()
	return len(stats.likes)
}

func (stats *PostStats) IsLiked() bool {
	stats.mu.Lock()
	defer stats.mu.Unlock()
	return slices.Contains(stats.likes, stats.UserId)
}

func (stats *PostStats) IsSaved() bool {
	stats.mu.Lock()
	defer stats.mu.Unlock()
	return stats.saved
}

// ToggleLike adds or removes the user from the like set. On success the set is
// replaced by the server's.
func (stats *PostStats) ToggleLike(ctx context.Context) error {
	stats.mu.Lock()
	if stats.likePending {
		stats.mu.Unlock()
		return ErrActionPending
	}

	previous := slices.Clone(stats.likes)
	liked := slices.Contains(stats.likes, stats.UserId)
	if liked {
		stats.likes = slices.DeleteFunc(stats.likes, func(id uuid.UUID) bool { return id == stats.UserId })
	} else {
		stats.likes = append(stats.likes, stats.UserId)
	}
	stats.likePending = true
	stats.mu.Unlock()

	var response model.PostLikesResponse
	var err error
	if liked {
		response, err = stats.actions.UnlikePost(ctx, stats.PostId)
	} else {
		response, err = stats.actions.LikePost(ctx, stats.PostId)
	}

	stats.mu.Lock()
	defer stats.mu.Unlock()
	stats.likePending = false

	if err != nil {
		stats.likes = previous
		return err
	}

	stats.likes = uniqueIds(response.Likes)
	return nil
}

// ToggleSave saves the post, or removes the user's save of it.
func (stats *PostStats) ToggleSave(ctx context.Context) error {
	stats.mu.Lock()
	if stats.savePending {
		stats.mu.Unlock()
		return ErrActionPending
	}

	wasSaved := stats.saved
	saveId := stats.saveId
	stats.saved = !wasSaved
	stats.savePending = true
	stats.mu.Unlock()

	var save model.SaveResponse
	var err error
	if wasSaved {
		err = stats.actions.DeleteSave(ctx, saveId)
	} else {
		save, err = stats.actions.SavePost(ctx, stats.PostId)
	}

	stats.mu.Lock()
	defer stats.mu.Unlock()
	stats.savePending = false

	if err != nil {
		stats.saved = wasSaved
		return err
	}

	if wasSaved {
		stats.saveId = uuid.Nil
	} else {
		stats.saveId = save.Id
	}
	return nil
}
