package activity

import (
	"context"
	"fmt"

	"reelmate/internal/entity"
	"reelmate/internal/modules/activity/dto"
	"reelmate/internal/modules/activity/repository"

	"github.com/google/uuid"
)

type FollowingLister interface {
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type ActivityService interface {
	Feed(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.FeedResponse, error)
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Activity, error)
}

type activityService struct {
	repo      repository.ActivityRepository
	following FollowingLister
}

func NewActivityService(repo repository.ActivityRepository, following FollowingLister) ActivityService {
	return &activityService{
		repo:      repo,
		following: following,
	}
}

func (s *activityService) Feed(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.FeedResponse, error) {
	ids, err := s.following.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load following: %w", err)
	}

	activities, err := s.repo.ListByUsers(ctx, ids, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	items := make([]dto.FeedItem, 0, len(activities))
	for i := range activities {
		items = append(items, dto.NewFeedItem(&activities[i]))
	}

	return &dto.FeedResponse{Items: items, Limit: limit, Offset: offset}, nil
}

func (s *activityService) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Activity, error) {
	return s.repo.ListByUsers(ctx, []uuid.UUID{userID}, limit, 0)
}
