package dto

import (
	"time"

	"reelmate/internal/entity"

	"github.com/google/uuid"
)

type SendInput struct {
	Content            string                   `json:"content" binding:"max=4000"`
	To                 string                   `json:"to" binding:"required,max=50"`
	MediaID            *int                     `json:"mediaId" binding:"omitempty,min=1"`
	MediaType          *entity.MessageMediaType `json:"mediaType" binding:"omitempty,messagemediatype"`
	MediaName          *string                  `json:"mediaName" binding:"omitempty,max=255"`
	MediaImage         *string                  `json:"mediaImage" binding:"omitempty,max=2048"`
	SpoilerMedia       *string                  `json:"spoilerMedia" binding:"omitempty,max=255"`
	SpoilerDescription *string                  `json:"spoilerDescription" binding:"omitempty,max=4000"`
	SpoilerSeason      *int                     `json:"spoilerSeason" binding:"omitempty,min=1"`
	SpoilerEpisode     *int                     `json:"spoilerEpisode" binding:"omitempty,min=1"`
}

type WebSocketQuery struct {
	ChatID string `form:"chat" binding:"required,uuid"`
}

type Participant struct {
	ID       uuid.UUID `json:"id"`
	Username *string   `json:"username"`
	Name     *string   `json:"name"`
	Image    *string   `json:"image"`
}

func NewParticipant(u *entity.User) Participant {
	return Participant{ID: u.ID, Username: u.Username, Name: u.Name, Image: u.Image}
}

type MessageResponse struct {
	ID                 uuid.UUID                `json:"id"`
	ChatID             uuid.UUID                `json:"chatId"`
	Seq                int64                    `json:"seq"`
	Content            string                   `json:"content"`
	SenderID           uuid.UUID                `json:"senderId"`
	SenderUsername     string                   `json:"senderUsername"`
	Read               bool                     `json:"read"`
	ReadAt             *time.Time               `json:"readAt"`
	CreatedAt          time.Time                `json:"createdAt"`
	MediaID            *int                     `json:"mediaId,omitempty"`
	MediaType          *entity.MessageMediaType `json:"mediaType,omitempty"`
	MediaName          *string                  `json:"mediaName,omitempty"`
	MediaImage         *string                  `json:"mediaImage,omitempty"`
	SpoilerMedia       *string                  `json:"spoilerMedia,omitempty"`
	SpoilerDescription *string                  `json:"spoilerDescription,omitempty"`
	SpoilerSeason      *int                     `json:"spoilerSeason,omitempty"`
	SpoilerEpisode     *int                     `json:"spoilerEpisode,omitempty"`
	SpoilerRevealed    bool                     `json:"spoilerRevealed"`
}

func NewMessageResponse(m *entity.Message) MessageResponse {
	return MessageResponse{
		ID:                 m.ID,
		ChatID:             m.ChatID,
		Seq:                m.Seq,
		Content:            m.Content,
		SenderID:           m.SenderID,
		SenderUsername:     m.SenderUsername,
		Read:               m.Read,
		ReadAt:             m.ReadAt,
		CreatedAt:          m.CreatedAt,
		MediaID:            m.MediaID,
		MediaType:          m.MediaType,
		MediaName:          m.MediaName,
		MediaImage:         m.MediaImage,
		SpoilerMedia:       m.SpoilerMedia,
		SpoilerDescription: m.SpoilerDescription,
		SpoilerSeason:      m.SpoilerSeason,
		SpoilerEpisode:     m.SpoilerEpisode,
		SpoilerRevealed:    m.SpoilerRevealed,
	}
}

// ChatResponse has a nil ID while the two users have not exchanged any message.
type ChatResponse struct {
	ID           *uuid.UUID        `json:"id"`
	Participants []Participant     `json:"participants"`
	Messages     []MessageResponse `json:"messages"`
}

type ChatSummary struct {
	ID          uuid.UUID        `json:"id"`
	With        *Participant     `json:"with"`
	LastMessage *MessageResponse `json:"lastMessage"`
	UnreadCount int64            `json:"unreadCount"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

const (
	EventMessageCreated  = "message.created"
	EventMessagesRead    = "messages.read"
	EventSpoilerRevealed = "spoiler.revealed"
)

// Event is published on the chat channel and forwarded to websocket clients as is.
type Event struct {
	Type       string           `json:"type"`
	ChatID     uuid.UUID        `json:"chatId"`
	Message    *MessageResponse `json:"message,omitempty"`
	MessageIDs []uuid.UUID      `json:"messageIds,omitempty"`
}
