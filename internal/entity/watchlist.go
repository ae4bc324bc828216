package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WatchlistEntry is a user's current status for one media item. A user has at
// most one entry per (media_id, media_type).
type WatchlistEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	MediaID   int       `gorm:"not null;uniqueIndex:idx_watchlist_user_media,priority:2" json:"media_id"`
	MediaType MediaType `gorm:"size:10;not null;uniqueIndex:idx_watchlist_user_media,priority:3" json:"media_type"`
	Status    Status    `gorm:"size:20;not null" json:"status"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_watchlist_user_media,priority:1" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (w *WatchlistEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID, err = uuid.NewV7()
	}
	return
}

// Activity is an append-only record of a status event. Name and image are
// captured when the row is written.
type Activity struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Status     Status    `gorm:"size:20;not null;uniqueIndex:idx_activity_unique,priority:4" json:"status"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_activity_unique,priority:1" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	MediaID    int       `gorm:"not null;uniqueIndex:idx_activity_unique,priority:2" json:"media_id"`
	MediaType  MediaType `gorm:"size:10;not null;uniqueIndex:idx_activity_unique,priority:3" json:"media_type"`
	MediaName  string    `gorm:"size:255;not null" json:"media_name"`
	MediaImage *string   `gorm:"type:text" json:"media_image,omitempty"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
