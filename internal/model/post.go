package model

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	Id             uuid.UUID
	CreatorId      uuid.UUID
	Caption        string
	Location       string
	Tags           []string
	ImageUrl       string
	ImageId        uuid.UUID
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

type PostCreateRequest struct {
	Caption  string `json:"caption" validate:"min=5,max=2200"`
	Location string `json:"location" validate:"min=3,max=1000"`
	Tags     string `json:"tags" validate:"max=2200"`
}

type PostUpdateRequest struct {
	Caption  string `json:"caption" validate:"min=5,max=2200"`
	Location string `json:"location" validate:"min=3,max=1000"`
	Tags     string `json:"tags" validate:"max=2200"`
}

type PostCreator struct {
	Id       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	ImageUrl string    `json:"imageUrl"`
}

type PostResponse struct {
	Id             uuid.UUID   `json:"id"`
	Caption        string      `json:"caption"`
	Location       string      `json:"location"`
	Tags           []string    `json:"tags"`
	ImageUrl       string      `json:"imageUrl"`
	ImageId        uuid.UUID   `json:"imageId"`
	Creator        PostCreator `json:"creator"`
	Likes          []uuid.UUID `json:"likes"`
	CreateDatetime time.Time   `json:"createDatetime"`
	UpdateDatetime time.Time   `json:"updateDatetime"`
}

type PostListResponse struct {
	Data []PostResponse `json:"data"`
	Page Page           `json:"page"`
}

type PostLikesResponse struct {
	PostId uuid.UUID   `json:"postId"`
	Likes  []uuid.UUID `json:"likes"`
}

type Page struct {
	NextCursor string `json:"nextCursor"`
}
