package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chat struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	// PairKey identifies the participant pair; see ChatPairKey.
	PairKey      string    `gorm:"size:80;uniqueIndex;not null" json:"-"`
	LastSeq      int64     `gorm:"not null;default:0" json:"last_seq"`
	Participants []*User   `gorm:"many2many:chat_participants" json:"participants,omitempty"`
	Messages     []Message `gorm:"constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// ChatPairKey is order independent: ChatPairKey(a, b) == ChatPairKey(b, a).
func ChatPairKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

type Message struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Seq       int64      `gorm:"not null;uniqueIndex:idx_messages_chat_seq,priority:2" json:"seq"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Read      bool       `gorm:"not null;default:false" json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	ChatID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_messages_chat_seq,priority:1" json:"chat_id"`

	// SenderID decides authorship; SenderUsername is kept for display and is not updated on rename.
	SenderID       uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	SenderUsername string    `gorm:"size:50;not null" json:"sender_username"`

	MediaID    *int              `json:"media_id,omitempty"`
	MediaType  *MessageMediaType `gorm:"size:10" json:"media_type,omitempty"`
	MediaName  *string           `gorm:"size:255" json:"media_name,omitempty"`
	MediaImage *string           `gorm:"type:text" json:"media_image,omitempty"`

	SpoilerMedia       *string `gorm:"size:255" json:"spoiler_media,omitempty"`
	SpoilerDescription *string `gorm:"type:text" json:"spoiler_description,omitempty"`
	SpoilerSeason      *int    `json:"spoiler_season,omitempty"`
	SpoilerEpisode     *int    `json:"spoiler_episode,omitempty"`
	SpoilerRevealed    bool    `gorm:"not null;default:false" json:"spoiler_revealed"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

func (m *Message) HasSpoiler() bool {
	return m.SpoilerMedia != nil
}
