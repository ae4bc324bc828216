package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"reelmate/internal/entity"
	"reelmate/internal/metrics"
	search "reelmate/internal/modules/search/service"
	"reelmate/internal/modules/user/dto"
	"reelmate/internal/modules/user/repository"
	"reelmate/pkg/apperror"
	"reelmate/pkg/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	recentActivityLimit = 10
	avatarFolder        = "avatars"
)

type ActivityLister interface {
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Activity, error)
}

type UserService interface {
	Get(ctx context.Context, callerID *uuid.UUID, username string) (*dto.ProfileResponse, error)
	ToggleFollow(ctx context.Context, callerID uuid.UUID, username string, follow bool) (*dto.FollowResponse, error)
	Search(ctx context.Context, query string, limit int) ([]dto.SearchResult, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, avatar *dto.AvatarFile) (*dto.UserResponse, error)
}

type userService struct {
	repo         repository.UserRepository
	activities   ActivityLister
	index        search.UserSearchService
	imageStorage storage.ImageStorage
	metrics      metrics.Recorder
	log          *logrus.Logger
}

func NewUserService(repo repository.UserRepository, activities ActivityLister, index search.UserSearchService, imageStorage storage.ImageStorage, recorder metrics.Recorder, log *logrus.Logger) UserService {
	return &userService{
		repo:         repo,
		activities:   activities,
		index:        index,
		imageStorage: imageStorage,
		metrics:      recorder,
		log:          log,
	}
}

func (s *userService) Get(ctx context.Context, callerID *uuid.UUID, username string) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}

	followers, err := s.repo.CountFollowers(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	following, err := s.repo.CountFollowing(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}

	profile := &dto.ProfileResponse{
		UserResponse:     *dto.NewUserResponse(user),
		FollowersCount:   followers,
		FollowingCount:   following,
		RecentActivities: []dto.ActivityItem{},
	}

	if callerID != nil {
		if *callerID == user.ID {
			profile.IsSelf = true
		} else {
			isFollowing, err := s.repo.IsFollowing(ctx, *callerID, user.ID)
			if err != nil {
				return nil, fmt.Errorf("check follow: %w", err)
			}
			profile.IsFollowing = isFollowing
		}
	}

	recent, err := s.activities.Recent(ctx, user.ID, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	for _, a := range recent {
		profile.RecentActivities = append(profile.RecentActivities, dto.ActivityItem{
			ID:         a.ID,
			MediaID:    a.MediaID,
			MediaType:  a.MediaType,
			MediaName:  a.MediaName,
			MediaImage: a.MediaImage,
			Status:     a.Status,
			CreatedAt:  a.CreatedAt,
		})
	}

	return profile, nil
}

func (s *userService) ToggleFollow(ctx context.Context, callerID uuid.UUID, username string, follow bool) (*dto.FollowResponse, error) {
	target, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	if target.ID == callerID {
		return nil, apperror.New(http.StatusBadRequest, "you cannot follow yourself", apperror.ErrBadRequest)
	}

	caller, err := s.repo.FindByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("caller: %w", err)
	}

	if follow {
		err = s.repo.Follow(ctx, caller, target)
	} else {
		err = s.repo.Unfollow(ctx, caller, target)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle follow: %w", err)
	}
	s.metrics.RecordFollowToggle(follow)

	s.log.WithFields(logrus.Fields{
		"follower_id": callerID,
		"target_id":   target.ID,
		"follow":      follow,
	}).Debug("follow toggled")

	count, err := s.repo.CountFollowers(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}

	return &dto.FollowResponse{Following: follow, FollowersCount: count}, nil
}

func (s *userService) Search(ctx context.Context, query string, limit int) ([]dto.SearchResult, error) {
	docs, err := s.index.SearchUsers(query, limit)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrUpstream)
	}

	results := make([]dto.SearchResult, 0, len(docs))
	for _, d := range docs {
		results = append(results, dto.SearchResult{
			ID:       d.ID,
			Username: d.Username,
			Name:     d.Name,
			Image:    d.Image,
		})
	}
	return results, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput, avatar *dto.AvatarFile) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		user.Name = &name
	}
	if input.Bio != nil {
		bio := strings.TrimSpace(*input.Bio)
		user.Bio = &bio
	}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if !usernamePattern.MatchString(username) {
			return nil, fmt.Errorf("username may only contain letters, digits and underscores: %w", apperror.ErrInvalidInput)
		}
		if existing, err := s.repo.FindByUsername(ctx, username); err == nil && existing.ID != user.ID {
			return nil, apperror.New(http.StatusConflict, "username is already taken", apperror.ErrConflict)
		} else if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		user.Username = &username
	}

	var oldImage *string
	if avatar != nil {
		if s.imageStorage == nil {
			return nil, apperror.New(http.StatusBadRequest, "avatar uploads are not configured", apperror.ErrBadRequest)
		}
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, avatarFolder, avatar.FileName)
		if err != nil {
			return nil, apperror.New(http.StatusBadRequest, err.Error(), apperror.ErrBadRequest)
		}
		oldImage = user.Image
		user.Image = &url
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(http.StatusConflict, "username is already taken", apperror.ErrConflict)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if oldImage != nil && *oldImage != "" {
		if err := s.imageStorage.DeleteImage(ctx, *oldImage); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to delete old avatar")
		}
	}

	if err := s.index.IndexUser(user); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to reindex user")
	}

	return dto.NewUserResponse(user), nil
}
