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

// ClientHandler обработчик для клиентов
type ClientHandler struct {
	service service.ClientService
	log     *logger.Logger
}

// NewClientHandler создает новый обработчик клиентов
func NewClientHandler(svc service.ClientService, log *logger.Logger) *ClientHandler {
	return &ClientHandler{
		service: svc,
		log:     log,
	}
}

// GetClients возвращает список всех клиентов
func (h *ClientHandler) GetClients(c *gin.Context) {
	clients, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to get clients: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get clients"})
		return
	}

	h.log.Info("Returned %d clients", len(clients))
	c.JSON(http.StatusOK, clients)
}

// GetClient возвращает клиента по CPF
func (h *ClientHandler) GetClient(c *gin.Context) {
	identifier := c.Param("cpf")

	client, err := h.service.Lookup(c.Request.Context(), identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.log.Warn("Client not found: %s", identifier)
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}

		h.log.Error("Failed to get client: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get client"})
		return
	}

	c.JSON(http.StatusOK, client)
}

// CreateClient регистрирует нового клиента
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req domain.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			h.log.Warn("Client already registered: %s", req.CPF)
			c.JSON(http.StatusConflict, gin.H{"error": "Client already registered"})
			return
		}

		if errors.Is(err, repository.ErrInvalidData) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		h.log.Error("Failed to register client: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register client"})
		return
	}

	h.log.Info("Registered client with CPF: %s", client.CPF)
	c.JSON(http.StatusCreated, client)
}

// UpdateClient изменяет профиль клиента
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	identifier := c.Param("cpf")

	var req domain.ClientUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.service.UpdateProfile(c.Request.Context(), identifier, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}

		h.log.Error("Failed to update client: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	c.JSON(http.StatusOK, client)
}

// SearchClients ищет клиентов по имени
func (h *ClientHandler) SearchClients(c *gin.Context) {
	term := c.Query("q")

	clients, err := h.service.SearchByName(c.Request.Context(), term)
	if err != nil {
		h.log.Error("Failed to search clients: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search clients"})
		return
	}

	c.JSON(http.StatusOK, clients)
}
