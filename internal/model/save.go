package model

import (
	"time"

	"github.com/google/uuid"
)

type Save struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	PostId         uuid.UUID
	CreateDatetime time.Time
}

type SaveResponse struct {
	Id     uuid.UUID `json:"id"`
	PostId uuid.UUID `json:"postId"`
}
