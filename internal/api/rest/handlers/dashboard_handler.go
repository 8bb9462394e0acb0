package handlers

import (
	"net/http"

	"github.com/Dhoini/Loyalty-microservice/internal/service"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/gin-gonic/gin"
)

// DashboardHandler обработчик сводных отчетов
type DashboardHandler struct {
	service service.DashboardService
	log     *logger.Logger
}

// NewDashboardHandler создает новый обработчик сводных отчетов
func NewDashboardHandler(svc service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		log:     log,
	}
}

// GetOverview возвращает сводную статистику
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to build dashboard overview: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard overview"})
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetWeeklyCoupons возвращает выдачу купонов по неделям
func (h *DashboardHandler) GetWeeklyCoupons(c *gin.Context) {
	buckets, err := h.service.WeeklyCouponBuckets(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to build weekly coupon buckets: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build weekly coupon buckets"})
		return
	}

	c.JSON(http.StatusOK, buckets)
}

// GetMonthlyCoupons возвращает выдачу купонов по месяцам
func (h *DashboardHandler) GetMonthlyCoupons(c *gin.Context) {
	buckets, err := h.service.MonthlyCouponBuckets(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to build monthly coupon buckets: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build monthly coupon buckets"})
		return
	}

	c.JSON(http.StatusOK, buckets)
}
