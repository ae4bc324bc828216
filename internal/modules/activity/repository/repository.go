package repository

import (
	"context"

	"reelmate/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	// ListByUsers returns activities of userIDs newest first, with the actor preloaded.
	ListByUsers(ctx context.Context, userIDs []uuid.UUID, limit, offset int) ([]entity.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID, limit, offset int) ([]entity.Activity, error) {
	activities := []entity.Activity{}
	if len(userIDs) == 0 {
		return activities, nil
	}

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&activities).Error
	return activities, err
}
