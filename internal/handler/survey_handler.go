package handler

import (
	"net/http"
	"sort"

	"surveyhub/internal/middleware"
	"surveyhub/internal/service"

	"github.com/gin-gonic/gin"
)

type SurveyHandler struct {
	aggregator *service.AggregatorService
}

func NewSurveyHandler(aggregator *service.AggregatorService) *SurveyHandler {
	return &SurveyHandler{aggregator: aggregator}
}

// Available lists open surveys across the user's connected providers, highest
// reward first.
func (h *SurveyHandler) Available(c *gin.Context) {
	userID := middleware.GetUserID(c)
	surveys, err := h.aggregator.AvailableSurveys(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}
	sort.SliceStable(surveys, func(i, j int) bool {
		return surveys[i].Reward.GreaterThan(surveys[j].Reward)
	})
	c.JSON(http.StatusOK, gin.H{"surveys": surveys, "count": len(surveys)})
}

// Link resolves the entry URL for one survey through its provider.
func (h *SurveyHandler) Link(c *gin.Context) {
	userID := middleware.GetUserID(c)
	providerID := c.Param("provider")
	surveyID := c.Param("id")
	link, err := h.aggregator.SurveyLink(c.Request.Context(), userID, providerID, surveyID)
	if err != nil {
		switch err {
		case service.ErrAccountNotFound, service.ErrUnknownProvider:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider unavailable"})
		}
		return
	}
	// Degraded gateways report failure as an empty link rather than an error.
	if link == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}
