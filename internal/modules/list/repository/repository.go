package repository

import (
	"context"

	"reelmate/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListRepository interface {
	FindEntry(ctx context.Context, userID uuid.UUID, mediaID int, mediaType entity.MediaType) (*entity.WatchlistEntry, error)
	Create(ctx context.Context, entry *entity.WatchlistEntry) error
	// Delete removes the entry matching key and status and reports how many rows went away.
	Delete(ctx context.Context, userID uuid.UUID, mediaID int, mediaType entity.MediaType, status entity.Status) (int64, error)
	// Replace drops any entry for the key and inserts entry in one transaction.
	Replace(ctx context.Context, entry *entity.WatchlistEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, status *entity.Status) ([]entity.WatchlistEntry, error)
	AppendActivity(ctx context.Context, activity *entity.Activity) error
}

type listRepository struct {
	db *gorm.DB
}

func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db}
}

func (r *listRepository) FindEntry(ctx context.Context, userID uuid.UUID, mediaID int, mediaType entity.MediaType) (*entity.WatchlistEntry, error) {
	var entries []entity.WatchlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ? AND media_type = ?", userID, mediaID, mediaType).
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (r *listRepository) Create(ctx context.Context, entry *entity.WatchlistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *listRepository) Delete(ctx context.Context, userID uuid.UUID, mediaID int, mediaType entity.MediaType, status entity.Status) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ? AND media_type = ? AND status = ?", userID, mediaID, mediaType, status).
		Delete(&entity.WatchlistEntry{})
	return res.RowsAffected, res.Error
}

func (r *listRepository) Replace(ctx context.Context, entry *entity.WatchlistEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ? AND media_id = ? AND media_type = ?", entry.UserID, entry.MediaID, entry.MediaType).
			Delete(&entity.WatchlistEntry{}).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func (r *listRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *entity.Status) ([]entity.WatchlistEntry, error) {
	var entries []entity.WatchlistEntry
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("updated_at DESC").Find(&entries).Error
	return entries, err
}

// AppendActivity keeps at most one row per (user, media, type, status).
func (r *listRepository) AppendActivity(ctx context.Context, activity *entity.Activity) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(activity).Error
}
