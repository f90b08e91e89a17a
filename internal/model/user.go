package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id             uuid.UUID
	Name           string
	Username       string
	Email          string
	Password       string
	Bio            *string
	ImageUrl       string
	ImageId        *uuid.UUID
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

type UserSignUpRequest struct {
	Name     string `json:"name" validate:"min=2,max=100"`
	Username string `json:"username" validate:"min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,max=72"`
}

type UserSignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,max=72"`
}

type UserUpdateRequest struct {
	Name     string  `json:"name" validate:"min=2,max=100"`
	Username string  `json:"username" validate:"min=2,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=2200"`
}

type UserResponse struct {
	Id             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Bio            *string   `json:"bio"`
	ImageUrl       string    `json:"imageUrl"`
	CreateDatetime time.Time `json:"createDatetime"`
	UpdateDatetime time.Time `json:"updateDatetime"`
}

type CurrentUserResponse struct {
	UserResponse
	Saves []SaveResponse `json:"saves"`
}

type WelcomeTemplateData struct {
	Name     string
	Username string
}

func (user User) ToResponse() UserResponse {
	return UserResponse{
		Id:             user.Id,
		Name:           user.Name,
		Username:       user.Username,
		Email:          user.Email,
		Bio:            user.Bio,
		ImageUrl:       user.ImageUrl,
		CreateDatetime: user.CreateDatetime,
		UpdateDatetime: user.UpdateDatetime,
	}
}
