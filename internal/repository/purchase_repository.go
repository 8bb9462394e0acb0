package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/google/uuid"
)

// PurchaseRepository интерфейс для работы с покупками
type PurchaseRepository interface {
	Create(ctx context.Context, purchase domain.Purchase) (domain.Purchase, error)
	GetAll(ctx context.Context) ([]domain.Purchase, error)
	// GetByClient возвращает покупки клиента; при orderDesc записи
	// упорядочены по времени по убыванию на стороне хранилища.
	GetByClient(ctx context.Context, cpf string, orderDesc bool) ([]domain.Purchase, error)
}

// InMemoryPurchaseRepository реализация репозитория покупок в памяти
type InMemoryPurchaseRepository struct {
	purchases map[uuid.UUID]domain.Purchase
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemoryPurchaseRepository создает новый репозиторий покупок в памяти
func NewInMemoryPurchaseRepository(log *logger.Logger) *InMemoryPurchaseRepository {
	return &InMemoryPurchaseRepository{
		purchases: make(map[uuid.UUID]domain.Purchase),
		log:       log,
	}
}

// Create сохраняет новую покупку
func (r *InMemoryPurchaseRepository) Create(ctx context.Context, purchase domain.Purchase) (domain.Purchase, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}

	r.purchases[purchase.ID] = purchase

	return purchase, nil
}

// GetAll возвращает все покупки, новые первыми
func (r *InMemoryPurchaseRepository) GetAll(ctx context.Context) ([]domain.Purchase, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	purchases := make([]domain.Purchase, 0, len(r.purchases))
	for _, purchase := range r.purchases {
		purchases = append(purchases, purchase)
	}

	sort.Slice(purchases, func(i, j int) bool {
		return purchases[i].CreatedAt.After(purchases[j].CreatedAt)
	})

	return purchases, nil
}

// GetByClient возвращает покупки клиента
func (r *InMemoryPurchaseRepository) GetByClient(ctx context.Context, cpf string, orderDesc bool) ([]domain.Purchase, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	purchases := make([]domain.Purchase, 0)
	for _, purchase := range r.purchases {
		if purchase.ClientCPF == cpf {
			purchases = append(purchases, purchase)
		}
	}

	if orderDesc {
		sort.Slice(purchases, func(i, j int) bool {
			return purchases[i].CreatedAt.After(purchases[j].CreatedAt)
		})
	}

	return purchases, nil
}
