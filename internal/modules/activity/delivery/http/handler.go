package handler

import (
	"net/http"

	"reelmate/internal/modules/activity/dto"
	activity "reelmate/internal/modules/activity/service"
	"reelmate/pkg/response"
	"reelmate/pkg/validator"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService activity.ActivityService
}

func NewActivityHandler(activityService activity.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) Feed(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.FeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.activityService.Feed(c.Request.Context(), userID, query.Limit, query.Offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
