package constant

const (
	FEED_LIMIT         = 20
	EXPLORE_LIMIT      = 9
	SEARCH_LIMIT       = 50
	DEFAULT_USER_LIMIT = 10
	MAX_LIMIT          = 50
	MAX_FILE_SIZE      = 10 * 1024 * 1024
	MAX_IMAGE_SIDE     = 2000
	AVATAR_SIZE        = 400
)

// Preview parameters embedded in the image URL of every uploaded file.
const (
	PREVIEW_WIDTH   = 2000
	PREVIEW_HEIGHT  = 2000
	PREVIEW_GRAVITY = "top"
	PREVIEW_QUALITY = 100
)
