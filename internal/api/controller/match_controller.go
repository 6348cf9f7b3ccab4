package controller

import (
	"ctchen222/line-em-up/internal/api/models"
	"ctchen222/line-em-up/internal/api/response"
	"ctchen222/line-em-up/internal/api/service"
	"ctchen222/line-em-up/internal/validator"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MatchController handles match-related HTTP requests.
type MatchController struct {
	matchService service.MatchService
}

// NewMatchController creates a new MatchController.
func NewMatchController(matchService service.MatchService) *MatchController {
	return &MatchController{
		matchService: matchService,
	}
}

// CreateMatch starts a match and returns its id and the seat tokens of its human sides.
func (mc *MatchController) CreateMatch(c *gin.Context) {
	var req models.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, validator.Describe(err))
		return
	}

	resp, err := mc.matchService.CreateMatch(c.Request.Context(), &req)
	if err != nil {
		response.WriteError(c, apiError(err))
		return
	}

	response.CreatedResponse(c, resp)
}

// GetMatch returns the latest snapshot of a match.
func (mc *MatchController) GetMatch(c *gin.Context) {
	snap, err := mc.matchService.GetMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, apiError(err))
		return
	}
	response.SuccessResponse(c, snap)
}

// GetStatistics returns the search statistics of a match hosted by this server.
func (mc *MatchController) GetStatistics(c *gin.Context) {
	stats, err := mc.matchService.GetStatistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, apiError(err))
		return
	}
	response.SuccessResponse(c, stats)
}

func (mc *MatchController) ListGames(c *gin.Context) {
	var q models.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, validator.Describe(err))
		return
	}
	games, err := mc.matchService.ListGames(c.Request.Context(), q.BatchID, q.Limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.SuccessResponseList(c, games)
}

func (mc *MatchController) ListBatches(c *gin.Context) {
	var q models.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, validator.Describe(err))
		return
	}
	batches, err := mc.matchService.ListBatches(c.Request.Context(), q.Limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.SuccessResponseList(c, batches)
}

func apiError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return response.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return response.NewError(http.StatusNotFound, err.Error())
	}
	return err
}
