package message

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"reelmate/internal/entity"
	"reelmate/internal/metrics"
	"reelmate/internal/modules/message/dto"
	"reelmate/internal/modules/message/realtime"
	"reelmate/internal/modules/message/repository"
	"reelmate/pkg/apperror"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

type MessageService interface {
	GetChats(ctx context.Context, callerID uuid.UUID) ([]dto.ChatSummary, error)
	GetChat(ctx context.Context, callerID uuid.UUID, username string) (*dto.ChatResponse, error)
	Send(ctx context.Context, callerID uuid.UUID, input dto.SendInput) (*dto.MessageResponse, error)
	MarkRead(ctx context.Context, callerID, messageID uuid.UUID) error
	MarkChatRead(ctx context.Context, callerID uuid.UUID, username string) (int, error)
	RevealSpoiler(ctx context.Context, callerID, messageID uuid.UUID) (*dto.MessageResponse, error)
	// Authorize reports ErrForbidden unless the caller takes part in the chat.
	Authorize(ctx context.Context, callerID, chatID uuid.UUID) error
}

type messageService struct {
	repo      repository.MessageRepository
	users     UserFinder
	broker    realtime.Broker
	sanitizer *bluemonday.Policy
	metrics   metrics.Recorder
	log       *logrus.Logger
	now       func() time.Time
}

func NewMessageService(repo repository.MessageRepository, users UserFinder, broker realtime.Broker, recorder metrics.Recorder, log *logrus.Logger) MessageService {
	return &messageService{
		repo:      repo,
		users:     users,
		broker:    broker,
		sanitizer: bluemonday.StrictPolicy(),
		metrics:   recorder,
		log:       log,
		now:       time.Now,
	}
}

func (s *messageService) GetChats(ctx context.Context, callerID uuid.UUID) ([]dto.ChatSummary, error) {
	rows, err := s.repo.ListChats(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	chats := make([]dto.ChatSummary, 0, len(rows))
	for _, row := range rows {
		summary := dto.ChatSummary{
			ID:          row.Chat.ID,
			UnreadCount: row.UnreadCount,
			UpdatedAt:   row.Chat.UpdatedAt,
		}
		for _, p := range row.Chat.Participants {
			if p.ID != callerID {
				other := dto.NewParticipant(p)
				summary.With = &other
			}
		}
		if row.LastMessage != nil {
			last := dto.NewMessageResponse(row.LastMessage)
			summary.LastMessage = &last
		}
		chats = append(chats, summary)
	}
	return chats, nil
}

func (s *messageService) GetChat(ctx context.Context, callerID uuid.UUID, username string) (*dto.ChatResponse, error) {
	caller, other, err := s.pair(ctx, callerID, username)
	if err != nil {
		return nil, err
	}

	res := &dto.ChatResponse{
		Participants: []dto.Participant{dto.NewParticipant(caller), dto.NewParticipant(other)},
		Messages:     []dto.MessageResponse{},
	}

	chat, err := s.repo.FindChatByPairKey(ctx, entity.ChatPairKey(caller.ID, other.ID))
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	if chat == nil {
		return res, nil
	}

	messages, err := s.repo.ListMessages(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	res.ID = &chat.ID
	for i := range messages {
		res.Messages = append(res.Messages, dto.NewMessageResponse(&messages[i]))
	}
	return res, nil
}

func (s *messageService) Send(ctx context.Context, callerID uuid.UUID, input dto.SendInput) (*dto.MessageResponse, error) {
	caller, recipient, err := s.pair(ctx, callerID, input.To)
	if err != nil {
		return nil, err
	}
	if caller.DisplayUsername() == "" {
		return nil, apperror.New(http.StatusBadRequest, "set a username before sending messages", apperror.ErrBadRequest)
	}

	msg, err := s.buildMessage(caller, input)
	if err != nil {
		return nil, err
	}

	chat, err := s.findOrCreateChat(ctx, caller, recipient)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.IsParticipant(ctx, chat.ID, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return nil, apperror.ErrForbidden
	}

	if err := s.repo.AppendMessage(ctx, chat.ID, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	s.metrics.RecordMessageSent(msg.HasSpoiler())

	res := dto.NewMessageResponse(msg)
	s.publish(ctx, dto.Event{Type: dto.EventMessageCreated, ChatID: chat.ID, Message: &res})

	return &res, nil
}

func (s *messageService) MarkRead(ctx context.Context, callerID, messageID uuid.UUID) error {
	msg, err := s.participantMessage(ctx, callerID, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID == callerID {
		return apperror.New(http.StatusForbidden, "only the recipient can mark a message as read", apperror.ErrForbidden)
	}

	changed, err := s.repo.MarkRead(ctx, messageID, s.now())
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if changed {
		s.publish(ctx, dto.Event{Type: dto.EventMessagesRead, ChatID: msg.ChatID, MessageIDs: []uuid.UUID{msg.ID}})
	}
	return nil
}

func (s *messageService) MarkChatRead(ctx context.Context, callerID uuid.UUID, username string) (int, error) {
	caller, other, err := s.pair(ctx, callerID, username)
	if err != nil {
		return 0, err
	}

	chat, err := s.repo.FindChatByPairKey(ctx, entity.ChatPairKey(caller.ID, other.ID))
	if err != nil {
		return 0, fmt.Errorf("find chat: %w", err)
	}
	if chat == nil {
		return 0, nil
	}

	ids, err := s.repo.MarkChatRead(ctx, chat.ID, caller.ID, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark chat read: %w", err)
	}
	if len(ids) > 0 {
		s.publish(ctx, dto.Event{Type: dto.EventMessagesRead, ChatID: chat.ID, MessageIDs: ids})
	}
	return len(ids), nil
}

func (s *messageService) RevealSpoiler(ctx context.Context, callerID, messageID uuid.UUID) (*dto.MessageResponse, error) {
	msg, err := s.participantMessage(ctx, callerID, messageID)
	if err != nil {
		return nil, err
	}
	if !msg.HasSpoiler() {
		return nil, apperror.New(http.StatusBadRequest, "message has no spoiler", apperror.ErrBadRequest)
	}

	changed, err := s.repo.RevealSpoiler(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("reveal spoiler: %w", err)
	}
	msg.SpoilerRevealed = true

	res := dto.NewMessageResponse(msg)
	if changed {
		s.publish(ctx, dto.Event{Type: dto.EventSpoilerRevealed, ChatID: msg.ChatID, Message: &res})
	}
	return &res, nil
}

func (s *messageService) Authorize(ctx context.Context, callerID, chatID uuid.UUID) error {
	ok, err := s.repo.IsParticipant(ctx, chatID, callerID)
	if err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return apperror.ErrForbidden
	}
	return nil
}

// pair loads the caller and the other user, rejecting conversations with oneself.
func (s *messageService) pair(ctx context.Context, callerID uuid.UUID, username string) (*entity.User, *entity.User, error) {
	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, nil, fmt.Errorf("caller: %w", err)
	}
	other, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, nil, fmt.Errorf("user %q: %w", username, err)
	}
	if other.ID == caller.ID {
		return nil, nil, apperror.New(http.StatusBadRequest, "you cannot message yourself", apperror.ErrBadRequest)
	}
	return caller, other, nil
}

func (s *messageService) participantMessage(ctx context.Context, callerID, messageID uuid.UUID) (*entity.Message, error) {
	msg, err := s.repo.FindMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.Authorize(ctx, callerID, msg.ChatID); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) findOrCreateChat(ctx context.Context, caller, recipient *entity.User) (*entity.Chat, error) {
	pairKey := entity.ChatPairKey(caller.ID, recipient.ID)

	chat, err := s.repo.FindChatByPairKey(ctx, pairKey)
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	if chat != nil {
		return chat, nil
	}

	chat, err = s.repo.CreateChat(ctx, &entity.Chat{
		PairKey:      pairKey,
		Participants: []*entity.User{caller, recipient},
	})
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

func (s *messageService) buildMessage(caller *entity.User, input dto.SendInput) (*entity.Message, error) {
	msg := &entity.Message{
		Content:        s.clean(input.Content),
		SenderID:       caller.ID,
		SenderUsername: caller.DisplayUsername(),
	}

	if input.MediaID != nil || input.MediaType != nil {
		if input.MediaID == nil || input.MediaType == nil {
			return nil, fmt.Errorf("mediaId and mediaType must be sent together: %w", apperror.ErrInvalidInput)
		}
		msg.MediaID = input.MediaID
		msg.MediaType = input.MediaType
		msg.MediaName = input.MediaName
		msg.MediaImage = input.MediaImage
	}

	hasSpoilerField := input.SpoilerMedia != nil || input.SpoilerDescription != nil ||
		input.SpoilerSeason != nil || input.SpoilerEpisode != nil
	if hasSpoilerField {
		if input.SpoilerMedia == nil || strings.TrimSpace(*input.SpoilerMedia) == "" {
			return nil, fmt.Errorf("spoiler fields require spoilerMedia: %w", apperror.ErrInvalidInput)
		}
		if input.SpoilerDescription == nil || strings.TrimSpace(*input.SpoilerDescription) == "" {
			return nil, fmt.Errorf("spoilerMedia requires spoilerDescription: %w", apperror.ErrInvalidInput)
		}
		if input.SpoilerEpisode != nil && input.SpoilerSeason == nil {
			return nil, fmt.Errorf("spoilerEpisode requires spoilerSeason: %w", apperror.ErrInvalidInput)
		}
		media := strings.TrimSpace(*input.SpoilerMedia)
		description := s.clean(*input.SpoilerDescription)
		msg.SpoilerMedia = &media
		msg.SpoilerDescription = &description
		msg.SpoilerSeason = input.SpoilerSeason
		msg.SpoilerEpisode = input.SpoilerEpisode
	}

	if msg.Content == "" && msg.MediaID == nil && msg.SpoilerMedia == nil {
		return nil, fmt.Errorf("message cannot be empty: %w", apperror.ErrInvalidInput)
	}
	return msg, nil
}

// clean strips markup. Entities are decoded before sanitizing so encoded tags are caught too;
// the sanitizer output is stored as is.
func (s *messageService) clean(content string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(html.UnescapeString(content)))
}

// publish is fire-and-forget: the message is already stored when it runs.
func (s *messageService) publish(ctx context.Context, event dto.Event) {
	if s.broker == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err == nil {
		err = s.broker.Publish(ctx, realtime.ChatChannel(event.ChatID.String()), payload)
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"chat_id": event.ChatID,
			"event":   event.Type,
		}).WithError(err).Warn("failed to publish chat event")
	}
}
