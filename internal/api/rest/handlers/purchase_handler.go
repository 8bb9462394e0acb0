package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/internal/service"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/gin-gonic/gin"
)

// PurchaseHandler обработчик для покупок
type PurchaseHandler struct {
	service service.LoyaltyService
	log     *logger.Logger
}

// NewPurchaseHandler создает новый обработчик покупок
func NewPurchaseHandler(svc service.LoyaltyService, log *logger.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		service: svc,
		log:     log,
	}
}

// RecordPurchase регистрирует покупку клиента
func (h *PurchaseHandler) RecordPurchase(c *gin.Context) {
	var req domain.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.RecordPurchase(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.log.Warn("Purchase for unknown client: %s", req.CPF)
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}

		if errors.Is(err, repository.ErrInvalidData) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		h.log.Error("Failed to record purchase: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record purchase"})
		return
	}

	h.log.Info("Recorded purchase %s: %d stamps, coupon=%t",
		result.PurchaseID, result.StampsGenerated, result.CouponGenerated)
	c.JSON(http.StatusCreated, result)
}

// GetPurchases возвращает все покупки
func (h *PurchaseHandler) GetPurchases(c *gin.Context) {
	purchases, err := h.service.AllPurchases(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to get purchases: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get purchases"})
		return
	}

	c.JSON(http.StatusOK, purchases)
}

// GetClientPurchases возвращает историю покупок клиента
func (h *PurchaseHandler) GetClientPurchases(c *gin.Context) {
	identifier := c.Param("cpf")

	purchases, err := h.service.PurchasesByClient(c.Request.Context(), identifier)
	if err != nil {
		h.log.Error("Failed to get client purchases: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get client purchases"})
		return
	}

	c.JSON(http.StatusOK, purchases)
}
