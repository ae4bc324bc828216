package handler

import (
	"net/http"

	"reelmate/internal/entity"
	"reelmate/internal/modules/media/dto"
	media "reelmate/internal/modules/media/service"
	"reelmate/pkg/response"
	"reelmate/pkg/validator"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	mediaService media.MediaService
}

func NewMediaHandler(mediaService media.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

func (h *MediaHandler) Discover(c *gin.Context) {
	var query dto.DiscoverQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.mediaService.Discover(c.Request.Context(), query.Page, parseType(query.Type))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// ShowsDiscover is Discover pinned to shows.
func (h *MediaHandler) ShowsDiscover(c *gin.Context) {
	var query dto.ShowsDiscoverQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.mediaService.Discover(c.Request.Context(), query.Page, entity.MediaTypeShow)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *MediaHandler) Search(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.mediaService.Search(c.Request.Context(), query.Query, query.Page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *MediaHandler) Details(c *gin.Context) {
	var query dto.DetailsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.mediaService.Details(c.Request.Context(), query.ID, parseType(query.Type))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *MediaHandler) Season(c *gin.Context) {
	var query dto.SeasonQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.mediaService.Season(c.Request.Context(), query.ID, query.Season)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *MediaHandler) GetGenres(c *gin.Context) {
	var query dto.GenresQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	genres, err := h.mediaService.GetGenres(c.Request.Context(), parseType(query.Type))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenreList{Genres: genres})
}

func (h *MediaHandler) SpoilerSearch(c *gin.Context) {
	var query dto.SpoilerSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.mediaService.SpoilerSearch(c.Request.Context(), query.Query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": res})
}

// parseType accepts both the wire form (movie/tv) and the enum form (MOVIE/SHOW).
func parseType(s string) entity.MediaType {
	if mt, ok := entity.MediaTypeFromTMDB(s); ok {
		return mt
	}
	if mt := entity.MediaType(s); mt.Valid() {
		return mt
	}
	return entity.MediaTypeMovie
}
