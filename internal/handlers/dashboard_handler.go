package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/condominio-api/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	systemService    *services.SystemService
}

func NewDashboardHandler(dashboardService *services.DashboardService, systemService *services.SystemService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, systemService: systemService}
}

// @Summary Dashboard Overview
// @Description Get the fund overview: balance, monthly collection, spending, open event progress
// @Tags Dashboard
// @Accept json
// @Produce json
// @Success 200 {object} services.DashboardOverview
// @Security BearerAuth
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboardService.GetOverview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// @Summary Fund Balance
// @Description Get the shared fund balance
// @Tags Dashboard
// @Accept json
// @Produce json
// @Success 200 {object} models.SystemBalance
// @Security BearerAuth
// @Router /balance [get]
func (h *DashboardHandler) Balance(c *gin.Context) {
	balance, err := h.systemService.Balance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_balance":   balance.TotalBalance,
		"last_updated":    balance.LastUpdated,
		"currency_symbol": "L",
	})
}

// @Summary Monthly Due Config
// @Description Get the configured monthly dues amount
// @Tags Dashboard
// @Accept json
// @Produce json
// @Success 200 {object} models.MonthlyDueConfig
// @Security BearerAuth
// @Router /config/monthly_due [get]
func (h *DashboardHandler) MonthlyDueConfig(c *gin.Context) {
	cfg, err := h.systemService.MonthlyDueConfig(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"required": cfg.Required, "updated_at": cfg.UpdatedAt})
}

type UpdateMonthlyDueRequest struct {
	Required float64 `json:"required"`
}

// @Summary Update Monthly Due Config
// @Description Change the monthly dues amount; started chains keep their locked-in amount
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param request body UpdateMonthlyDueRequest true "Required amount"
// @Success 200 {object} models.MonthlyDueConfig
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /config/monthly_due [put]
func (h *DashboardHandler) UpdateMonthlyDue(c *gin.Context) {
	var req UpdateMonthlyDueRequest
	if err := BindNestedOrFlat(c, "config", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.systemService.UpdateMonthlyRequired(c.Request.Context(), req.Required,
		getUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"required": cfg.Required, "message": "Cuota mensual actualizada"})
}
