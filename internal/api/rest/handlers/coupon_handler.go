package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/internal/service"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/gin-gonic/gin"
)

// CouponHandler обработчик для купонов
type CouponHandler struct {
	service   service.LoyaltyService
	dashboard service.DashboardService
	log       *logger.Logger
}

// NewCouponHandler создает новый обработчик купонов
func NewCouponHandler(svc service.LoyaltyService, dashboard service.DashboardService, log *logger.Logger) *CouponHandler {
	return &CouponHandler{
		service:   svc,
		dashboard: dashboard,
		log:       log,
	}
}

// GetCoupons возвращает купоны, при необходимости отфильтрованные по CPF
func (h *CouponHandler) GetCoupons(c *gin.Context) {
	cpfTerm := c.Query("cpf")

	coupons, err := h.dashboard.CouponsFiltered(c.Request.Context(), cpfTerm)
	if err != nil {
		h.log.Error("Failed to get coupons: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get coupons"})
		return
	}

	c.JSON(http.StatusOK, coupons)
}

// GetClientCoupons возвращает купоны клиента
func (h *CouponHandler) GetClientCoupons(c *gin.Context) {
	identifier := c.Param("cpf")

	coupons, err := h.service.CouponsByClient(c.Request.Context(), identifier)
	if err != nil {
		h.log.Error("Failed to get client coupons: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get client coupons"})
		return
	}

	c.JSON(http.StatusOK, coupons)
}

// RedeemCoupon помечает купон использованным
func (h *CouponHandler) RedeemCoupon(c *gin.Context) {
	id := c.Param("id")

	coupon, err := h.service.RedeemCoupon(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.log.Warn("Coupon not found: %s", id)
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}

		if errors.Is(err, repository.ErrInvalidData) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		h.log.Error("Failed to redeem coupon: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem coupon"})
		return
	}

	h.log.Info("Redeemed coupon %s for client %s", coupon.ID, coupon.ClientCPF)
	c.JSON(http.StatusOK, coupon)
}
