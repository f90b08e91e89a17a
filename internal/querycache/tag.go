package querycache

import "github.com/google/uuid"

const (
	TagRecentPosts   = "recent-posts"
	TagInfinitePosts = "infinite-posts"
	TagSearchPosts   = "search-posts"
	TagUsers         = "users"
	TagCurrentUsers  = "current-users"
	TagAllSavedPosts = "saved-posts"
)

func TagPost(postId uuid.UUID) string {
	return "post:" + postId.String()
}

func TagUserPosts(userId uuid.UUID) string {
	return "user-posts:" + userId.String()
}

func TagCurrentUser(userId uuid.UUID) string {
	return "current-user:" + userId.String()
}

func TagSavedPosts(userId uuid.UUID) string {
	return "saved-posts:" + userId.String()
}

// PostListTags are the tags of every query that lists posts of any creator.
func PostListTags() []string {
	return []string{TagRecentPosts, TagInfinitePosts, TagSearchPosts, TagAllSavedPosts}
}
