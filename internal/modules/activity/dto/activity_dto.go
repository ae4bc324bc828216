package dto

import (
	"time"

	"reelmate/internal/entity"

	"github.com/google/uuid"
)

type FeedQuery struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

type Actor struct {
	ID       uuid.UUID `json:"id"`
	Username *string   `json:"username"`
	Name     *string   `json:"name"`
	Image    *string   `json:"image"`
}

type FeedItem struct {
	ID         uuid.UUID        `json:"id"`
	User       *Actor           `json:"user,omitempty"`
	MediaID    int              `json:"mediaId"`
	MediaType  entity.MediaType `json:"mediaType"`
	MediaName  string           `json:"mediaName"`
	MediaImage *string          `json:"mediaImage"`
	Status     entity.Status    `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type FeedResponse struct {
	Items  []FeedItem `json:"items"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func NewFeedItem(a *entity.Activity) FeedItem {
	item := FeedItem{
		ID:         a.ID,
		MediaID:    a.MediaID,
		MediaType:  a.MediaType,
		MediaName:  a.MediaName,
		MediaImage: a.MediaImage,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt,
	}
	if a.User != nil {
		item.User = &Actor{
			ID:       a.User.ID,
			Username: a.User.Username,
			Name:     a.User.Name,
			Image:    a.User.Image,
		}
	}
	return item
}
