package handler

import (
	"net/http"

	"github.com/blues/ivp/internal/logic"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsLogic *logic.AnalyticsLogic
}

func NewAnalyticsHandler(analyticsLogic *logic.AnalyticsLogic) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsLogic: analyticsLogic}
}

// GetFundingAnalytics 获取全局募资分析
func (h *AnalyticsHandler) GetFundingAnalytics(c *gin.Context) {
	analytics, err := h.analyticsLogic.GetFundingAnalytics()
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"analytics": analytics})
}
