package dto

import (
	"io"
	"time"

	"reelmate/internal/entity"

	"github.com/google/uuid"
)

// AvatarFile is an uploaded avatar image.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

type RegisterInput struct {
	Email    string  `json:"email" binding:"required,email,max=255"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	Username string  `json:"username" binding:"required,min=3,max=30"`
	Name     *string `json:"name" binding:"omitempty,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  *string   `json:"username"`
	Name      *string   `json:"name"`
	Image     *string   `json:"image"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Image:     u.Image,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

type ActivityItem struct {
	ID         uuid.UUID        `json:"id"`
	MediaID    int              `json:"mediaId"`
	MediaType  entity.MediaType `json:"mediaType"`
	MediaName  string           `json:"mediaName"`
	MediaImage *string          `json:"mediaImage"`
	Status     entity.Status    `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type ProfileResponse struct {
	UserResponse
	FollowersCount   int64          `json:"followersCount"`
	FollowingCount   int64          `json:"followingCount"`
	IsFollowing      bool           `json:"isFollowing"`
	IsSelf           bool           `json:"isSelf"`
	RecentActivities []ActivityItem `json:"recentActivities"`
}

type FollowRequest struct {
	Follow *bool `json:"follow" binding:"required"`
}

type FollowResponse struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followersCount"`
}

type SearchQuery struct {
	Query string `form:"q" binding:"required,max=100"`
	Limit int    `form:"limit,default=10" binding:"min=1,max=50"`
}

type SearchResult struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

type UpdateProfileInput struct {
	Name     *string `form:"name" binding:"omitempty,max=100"`
	Username *string `form:"username" binding:"omitempty,min=3,max=30"`
	Bio      *string `form:"bio" binding:"omitempty,max=500"`
}
