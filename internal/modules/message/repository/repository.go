package repository

import (
	"context"
	"errors"
	"time"

	"reelmate/internal/entity"
	"reelmate/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRow is one entry of a user's inbox.
type ChatRow struct {
	Chat        entity.Chat
	LastMessage *entity.Message
	UnreadCount int64
}

type MessageRepository interface {
	FindChatByPairKey(ctx context.Context, pairKey string) (*entity.Chat, error)
	// CreateChat inserts chat with its participants. When another request created the
	// same pair first, the existing chat is returned instead.
	CreateChat(ctx context.Context, chat *entity.Chat) (*entity.Chat, error)
	IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error)
	// AppendMessage locks the chat row, takes the next sequence number and inserts msg.
	AppendMessage(ctx context.Context, chatID uuid.UUID, msg *entity.Message) error
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]entity.Message, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]ChatRow, error)
	FindMessage(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// MarkChatRead marks every unread message in the chat not sent by readerID.
	MarkChatRead(ctx context.Context, chatID, readerID uuid.UUID, at time.Time) ([]uuid.UUID, error)
	RevealSpoiler(ctx context.Context, id uuid.UUID) (bool, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) FindChatByPairKey(ctx context.Context, pairKey string) (*entity.Chat, error) {
	var chats []entity.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("pair_key = ?", pairKey).
		Limit(1).
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return nil, nil
	}
	return &chats[0], nil
}

func (r *messageRepository) CreateChat(ctx context.Context, chat *entity.Chat) (*entity.Chat, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Participants.*").Create(chat).Error
	})
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	existing, err := r.FindChatByPairKey(ctx, chat.PairKey)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperror.ErrConflict
	}
	return existing, nil
}

func (r *messageRepository) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("chat_participants").
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *messageRepository) AppendMessage(ctx context.Context, chatID uuid.UUID, msg *entity.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chat entity.Chat
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", chatID).
			Take(&chat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}

		seq := chat.LastSeq + 1
		if err := tx.Model(&entity.Chat{}).
			Where("id = ?", chatID).
			Updates(map[string]any{"last_seq": seq, "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		msg.ChatID = chatID
		msg.Seq = seq
		return tx.Create(msg).Error
	})
}

func (r *messageRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]entity.Message, error) {
	messages := []entity.Message{}
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("seq ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) ListChats(ctx context.Context, userID uuid.UUID) ([]ChatRow, error) {
	db := r.db.WithContext(ctx)

	var chatIDs []uuid.UUID
	if err := db.Table("chat_participants").
		Where("user_id = ?", userID).
		Pluck("chat_id", &chatIDs).Error; err != nil {
		return nil, err
	}
	if len(chatIDs) == 0 {
		return []ChatRow{}, nil
	}

	var chats []entity.Chat
	if err := db.Preload("Participants").
		Where("id IN ?", chatIDs).
		Order("updated_at DESC").
		Find(&chats).Error; err != nil {
		return nil, err
	}

	var last []entity.Message
	latest := db.Model(&entity.Message{}).
		Select("chat_id, MAX(seq) AS seq").
		Where("chat_id IN ?", chatIDs).
		Group("chat_id")
	if err := db.Table("messages").
		Select("messages.*").
		Joins("JOIN (?) AS latest ON latest.chat_id = messages.chat_id AND latest.seq = messages.seq", latest).
		Find(&last).Error; err != nil {
		return nil, err
	}
	lastByChat := make(map[uuid.UUID]*entity.Message, len(last))
	for i := range last {
		lastByChat[last[i].ChatID] = &last[i]
	}

	type unreadRow struct {
		ChatID uuid.UUID
		Count  int64
	}
	var unread []unreadRow
	if err := db.Model(&entity.Message{}).
		Select("chat_id, count(*) AS count").
		Where("chat_id IN ? AND read = ? AND sender_id <> ?", chatIDs, false, userID).
		Group("chat_id").
		Scan(&unread).Error; err != nil {
		return nil, err
	}
	unreadByChat := make(map[uuid.UUID]int64, len(unread))
	for _, u := range unread {
		unreadByChat[u.ChatID] = u.Count
	}

	rows := make([]ChatRow, 0, len(chats))
	for _, c := range chats {
		rows = append(rows, ChatRow{
			Chat:        c,
			LastMessage: lastByChat[c.ID],
			UnreadCount: unreadByChat[c.ID],
		})
	}
	return rows, nil
}

func (r *messageRepository) FindMessage(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	var messages []entity.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&messages).Error; err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, apperror.ErrNotFound
	}
	return &messages[0], nil
}

// MarkRead only touches unread rows, so read never goes back to false and read_at keeps its first value.
func (r *messageRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("id = ? AND read = ?", id, false).
		Updates(map[string]any{"read": true, "read_at": at})
	return res.RowsAffected > 0, res.Error
}

func (r *messageRepository) MarkChatRead(ctx context.Context, chatID, readerID uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Message{}).
			Where("chat_id = ? AND read = ? AND sender_id <> ?", chatID, false, readerID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&entity.Message{}).
			Where("id IN ? AND read = ?", ids, false).
			Updates(map[string]any{"read": true, "read_at": at}).Error
	})
	return ids, err
}

func (r *messageRepository) RevealSpoiler(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Message{}).
		Where("id = ? AND spoiler_revealed = ?", id, false).
		Update("spoiler_revealed", true)
	return res.RowsAffected > 0, res.Error
}
