package media

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"reelmate/internal/entity"
	"reelmate/internal/modules/media/dto"
	"reelmate/pkg/apperror"
)

// Upstream is the subset of the TMDB client the service uses.
type Upstream interface {
	Discover(ctx context.Context, mediaPath string, page int) (*dto.PagedResults, error)
	SearchMulti(ctx context.Context, query string, page int) (*dto.PagedResults, error)
	Details(ctx context.Context, mediaPath string, id int) (*dto.MediaDetails, error)
	Season(ctx context.Context, showID, season int) (*dto.Season, error)
	Genres(ctx context.Context, mediaPath string) ([]dto.Genre, error)
}

type MediaService interface {
	Discover(ctx context.Context, page int, mediaType entity.MediaType) (*dto.PagedResults, error)
	Search(ctx context.Context, query string, page int) (*dto.GroupedSearchResponse, error)
	Details(ctx context.Context, id int, mediaType entity.MediaType) (*dto.MediaDetails, error)
	Season(ctx context.Context, showID, season int) (*dto.Season, error)
	GetGenres(ctx context.Context, mediaType entity.MediaType) ([]dto.Genre, error)
	SpoilerSearch(ctx context.Context, query string) ([]dto.MediaSummary, error)
	// Lookup returns the display name and poster URL used to denormalize activities.
	Lookup(ctx context.Context, id int, mediaType entity.MediaType) (string, *string, error)
}

type mediaService struct {
	upstream     Upstream
	imageBaseURL string
}

func NewMediaService(upstream Upstream, imageBaseURL string) MediaService {
	return &mediaService{
		upstream:     upstream,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

func (s *mediaService) Discover(ctx context.Context, page int, mediaType entity.MediaType) (*dto.PagedResults, error) {
	if page < 1 {
		page = 1
	}
	return s.upstream.Discover(ctx, mediaType.TMDBPath(), page)
}

func (s *mediaService) Search(ctx context.Context, query string, page int) (*dto.GroupedSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty: %w", apperror.ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}

	res, err := s.upstream.SearchMulti(ctx, query, page)
	if err != nil {
		return nil, err
	}

	grouped := &dto.GroupedSearchResponse{
		Page:         res.Page,
		TotalPages:   res.TotalPages,
		TotalResults: res.TotalResults,
		Movies:       []dto.MediaSummary{},
		Shows:        []dto.MediaSummary{},
		People:       []dto.MediaSummary{},
	}
	for _, item := range res.Results {
		switch item.MediaType {
		case "movie":
			grouped.Movies = append(grouped.Movies, item)
		case "tv":
			grouped.Shows = append(grouped.Shows, item)
		case "person":
			grouped.People = append(grouped.People, item)
		}
	}
	sortByPopularity(grouped.Movies)
	sortByPopularity(grouped.Shows)
	sortByPopularity(grouped.People)

	return grouped, nil
}

func (s *mediaService) Details(ctx context.Context, id int, mediaType entity.MediaType) (*dto.MediaDetails, error) {
	if id <= 0 {
		return nil, fmt.Errorf("media id must be positive: %w", apperror.ErrInvalidInput)
	}
	return s.upstream.Details(ctx, mediaType.TMDBPath(), id)
}

func (s *mediaService) Season(ctx context.Context, showID, season int) (*dto.Season, error) {
	if showID <= 0 || season < 0 {
		return nil, fmt.Errorf("invalid show or season number: %w", apperror.ErrInvalidInput)
	}
	return s.upstream.Season(ctx, showID, season)
}

func (s *mediaService) GetGenres(ctx context.Context, mediaType entity.MediaType) ([]dto.Genre, error) {
	return s.upstream.Genres(ctx, mediaType.TMDBPath())
}

// SpoilerSearch returns movies and shows only, most popular first.
func (s *mediaService) SpoilerSearch(ctx context.Context, query string) ([]dto.MediaSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.MediaSummary{}, nil
	}

	res, err := s.upstream.SearchMulti(ctx, query, 1)
	if err != nil {
		return nil, err
	}

	results := make([]dto.MediaSummary, 0, len(res.Results))
	for _, item := range res.Results {
		if item.MediaType == "movie" || item.MediaType == "tv" {
			results = append(results, item)
		}
	}
	sortByPopularity(results)
	return results, nil
}

func (s *mediaService) Lookup(ctx context.Context, id int, mediaType entity.MediaType) (string, *string, error) {
	details, err := s.Details(ctx, id, mediaType)
	if err != nil {
		return "", nil, err
	}

	var image *string
	if details.PosterPath != nil && *details.PosterPath != "" {
		u := s.imageBaseURL + *details.PosterPath
		image = &u
	}
	return details.DisplayTitle(), image, nil
}

func sortByPopularity(items []dto.MediaSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Popularity > items[j].Popularity
	})
}
