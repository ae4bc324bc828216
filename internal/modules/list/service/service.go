package list

import (
	"context"
	"errors"
	"fmt"

	"reelmate/internal/entity"
	"reelmate/internal/metrics"
	"reelmate/internal/modules/list/dto"
	"reelmate/internal/modules/list/repository"
	"reelmate/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MediaLookup resolves display fields for an activity row when the client sent none.
type MediaLookup interface {
	Lookup(ctx context.Context, id int, mediaType entity.MediaType) (string, *string, error)
}

type ListService interface {
	GetEntry(ctx context.Context, userID uuid.UUID, mediaID int, mediaType entity.MediaType) (*entity.Status, error)
	Add(ctx context.Context, userID uuid.UUID, req dto.AddRequest) error
	Remove(ctx context.Context, userID uuid.UUID, req dto.RemoveRequest) error
	SetStatus(ctx context.Context, userID uuid.UUID, req dto.SetStatusRequest) error
	List(ctx context.Context, userID uuid.UUID, status *entity.Status) (*dto.ListResponse, error)
}

type listService struct {
	repo    repository.ListRepository
	media   MediaLookup
	metrics metrics.Recorder
	log     *logrus.Logger
}

func NewListService(repo repository.ListRepository, media MediaLookup, recorder metrics.Recorder, log *logrus.Logger) ListService {
	return &listService{
		repo:    repo,
		media:   media,
		metrics: recorder,
		log:     log,
	}
}

func (s *listService) GetEntry(ctx context.Context, userID uuid.UUID, mediaID int, mediaType entity.MediaType) (*entity.Status, error) {
	entry, err := s.repo.FindEntry(ctx, userID, mediaID, mediaType)
	if err != nil {
		return nil, fmt.Errorf("get list entry: %w", err)
	}
	if entry == nil {
		return nil, nil
	}
	return &entry.Status, nil
}

func (s *listService) Add(ctx context.Context, userID uuid.UUID, req dto.AddRequest) error {
	entry := &entity.WatchlistEntry{
		UserID:    userID,
		MediaID:   req.MediaID,
		MediaType: req.MediaType,
		Status:    req.Status,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("media is already on your list: %w", apperror.ErrConflict)
		}
		return fmt.Errorf("add list entry: %w", err)
	}

	s.metrics.RecordListChange("add")
	s.appendActivity(ctx, userID, req)
	return nil
}

func (s *listService) Remove(ctx context.Context, userID uuid.UUID, req dto.RemoveRequest) error {
	deleted, err := s.repo.Delete(ctx, userID, req.MediaID, req.MediaType, req.Status)
	if err != nil {
		return fmt.Errorf("remove list entry: %w", err)
	}
	if deleted == 0 {
		if req.Replace {
			return nil
		}
		return fmt.Errorf("list entry: %w", apperror.ErrNotFound)
	}

	s.metrics.RecordListChange("remove")
	return nil
}

func (s *listService) SetStatus(ctx context.Context, userID uuid.UUID, req dto.SetStatusRequest) error {
	entry := &entity.WatchlistEntry{
		UserID:    userID,
		MediaID:   req.MediaID,
		MediaType: req.MediaType,
		Status:    req.Status,
	}
	if err := s.repo.Replace(ctx, entry); err != nil {
		return fmt.Errorf("set list status: %w", err)
	}

	s.metrics.RecordListChange("set_status")
	s.appendActivity(ctx, userID, req)
	return nil
}

func (s *listService) List(ctx context.Context, userID uuid.UUID, status *entity.Status) (*dto.ListResponse, error) {
	entries, err := s.repo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	res := &dto.ListResponse{
		Watching:    []dto.EntryItem{},
		PlanToWatch: []dto.EntryItem{},
		Completed:   []dto.EntryItem{},
	}
	for _, e := range entries {
		item := dto.EntryItem{
			ID:        e.ID,
			MediaID:   e.MediaID,
			MediaType: e.MediaType,
			Status:    e.Status,
			UpdatedAt: e.UpdatedAt,
		}
		switch e.Status {
		case entity.StatusWatching:
			res.Watching = append(res.Watching, item)
		case entity.StatusPlanToWatch:
			res.PlanToWatch = append(res.PlanToWatch, item)
		case entity.StatusCompleted:
			res.Completed = append(res.Completed, item)
		}
	}
	return res, nil
}

// appendActivity never fails the caller; the watchlist row is already stored.
func (s *listService) appendActivity(ctx context.Context, userID uuid.UUID, req dto.AddRequest) {
	fields := logrus.Fields{
		"user_id":    userID,
		"media_id":   req.MediaID,
		"media_type": req.MediaType,
		"status":     req.Status,
	}

	name := ""
	if req.MediaName != nil {
		name = *req.MediaName
	}
	image := req.MediaImage

	if name == "" && s.media != nil {
		lookedUp, lookedUpImage, err := s.media.Lookup(ctx, req.MediaID, req.MediaType)
		if err != nil {
			s.log.WithFields(fields).WithError(err).Warn("media lookup for activity failed")
		} else {
			name = lookedUp
			if image == nil {
				image = lookedUpImage
			}
		}
	}

	activity := &entity.Activity{
		UserID:     userID,
		MediaID:    req.MediaID,
		MediaType:  req.MediaType,
		Status:     req.Status,
		MediaName:  name,
		MediaImage: image,
	}
	if err := s.repo.AppendActivity(ctx, activity); err != nil {
		s.log.WithFields(fields).WithError(err).Error("failed to append activity")
	}
}
