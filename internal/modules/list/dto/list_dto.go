package dto

import (
	"time"

	"reelmate/internal/entity"

	"github.com/google/uuid"
)

type EntryQuery struct {
	MediaID   int              `form:"mediaId" binding:"required,min=1"`
	MediaType entity.MediaType `form:"mediaType" binding:"required,mediatype"`
}

type AddRequest struct {
	MediaID    int              `json:"mediaId" binding:"required,min=1"`
	MediaType  entity.MediaType `json:"mediaType" binding:"required,mediatype"`
	Status     entity.Status    `json:"status" binding:"required,status"`
	MediaName  *string          `json:"mediaName" binding:"omitempty,max=255"`
	MediaImage *string          `json:"mediaImage" binding:"omitempty,max=2048"`
}

type RemoveRequest struct {
	MediaID   int              `json:"mediaId" binding:"required,min=1"`
	MediaType entity.MediaType `json:"mediaType" binding:"required,mediatype"`
	Status    entity.Status    `json:"status" binding:"required,status"`
	Replace   bool             `json:"replace"`
}

// SetStatusRequest replaces whatever status the caller has for the media.
type SetStatusRequest = AddRequest

type ListQuery struct {
	Status entity.Status `form:"status" binding:"omitempty,status"`
}

type EntryResponse struct {
	Status *entity.Status `json:"status"`
}

type EntryItem struct {
	ID        uuid.UUID        `json:"id"`
	MediaID   int              `json:"mediaId"`
	MediaType entity.MediaType `json:"mediaType"`
	Status    entity.Status    `json:"status"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type ListResponse struct {
	Watching    []EntryItem `json:"WATCHING"`
	PlanToWatch []EntryItem `json:"PLAN_TO_WATCH"`
	Completed   []EntryItem `json:"COMPLETED"`
}
