package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"physiotrack/backend/internal/middleware"
	"physiotrack/backend/internal/service"
)

// InsightHandler serves pain logging, statistics and program suggestions.
type InsightHandler struct {
	painService           *service.PainService
	statsService          *service.StatsService
	recommendationService *service.RecommendationService
}

func NewInsightHandler(
	painService *service.PainService,
	statsService *service.StatsService,
	recommendationService *service.RecommendationService,
) *InsightHandler {
	return &InsightHandler{
		painService:           painService,
		statsService:          statsService,
		recommendationService: recommendationService,
	}
}

func (h *InsightHandler) ListPain(c *gin.Context) {
	entries, apiErr := h.painService.List(
		c.Request.Context(),
		middleware.UserID(c),
		queryInt(c, "days", 30),
		queryInt(c, "limit", 100),
	)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *InsightHandler) RecordPain(c *gin.Context) {
	var req service.PainInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	entry, apiErr := h.painService.Record(c.Request.Context(), middleware.UserID(c), req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

func (h *InsightHandler) GetStats(c *gin.Context) {
	stats, apiErr := h.statsService.Get(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *InsightHandler) Recommend(c *gin.Context) {
	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	suggestion, apiErr := h.recommendationService.Suggest(c.Request.Context(), middleware.UserID(c), req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendation": suggestion})
}
