package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
)

// ClientRepository интерфейс для работы с клиентами
type ClientRepository interface {
	GetAll(ctx context.Context) ([]domain.Client, error)
	GetByCPF(ctx context.Context, cpf string) (domain.Client, error)
	Create(ctx context.Context, client domain.Client) (domain.Client, error)
	Update(ctx context.Context, client domain.Client) error
	// UpdateStamps частично обновляет запись клиента: баланс штампов
	// и отметку последней покупки.
	UpdateStamps(ctx context.Context, cpf string, stamps int, lastPurchaseAt time.Time) error
}

// InMemoryClientRepository реализация репозитория клиентов в памяти
type InMemoryClientRepository struct {
	clients map[string]domain.Client
	mutex   sync.RWMutex
	log     *logger.Logger
}

// NewInMemoryClientRepository создает новый репозиторий клиентов в памяти
func NewInMemoryClientRepository(log *logger.Logger) *InMemoryClientRepository {
	return &InMemoryClientRepository{
		clients: make(map[string]domain.Client),
		log:     log,
	}
}

// GetAll возвращает всех клиентов
func (r *InMemoryClientRepository) GetAll(ctx context.Context) ([]domain.Client, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	clients := make([]domain.Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}

	return clients, nil
}

// GetByCPF возвращает клиента по CPF
func (r *InMemoryClientRepository) GetByCPF(ctx context.Context, cpf string) (domain.Client, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	client, exists := r.clients[cpf]
	if !exists {
		return domain.Client{}, ErrNotFound
	}

	return client, nil
}

// Create создает нового клиента
func (r *InMemoryClientRepository) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.clients[client.CPF]; exists {
		return domain.Client{}, ErrDuplicate
	}

	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()

	r.clients[client.CPF] = client

	return client, nil
}

// Update обновляет существующего клиента
func (r *InMemoryClientRepository) Update(ctx context.Context, client domain.Client) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.clients[client.CPF]
	if !exists {
		return ErrNotFound
	}

	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = time.Now()

	r.clients[client.CPF] = client

	return nil
}

// UpdateStamps обновляет баланс штампов и отметку последней покупки
func (r *InMemoryClientRepository) UpdateStamps(ctx context.Context, cpf string, stamps int, lastPurchaseAt time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	client, exists := r.clients[cpf]
	if !exists {
		return ErrNotFound
	}

	client.CurrentStamps = stamps
	client.LastPurchaseAt = &lastPurchaseAt
	client.UpdatedAt = time.Now()

	r.clients[cpf] = client

	return nil
}
