package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/google/uuid"
)

// CouponRepository интерфейс для работы с купонами
type CouponRepository interface {
	Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Coupon, error)
	GetAll(ctx context.Context, orderDesc bool) ([]domain.Coupon, error)
	GetByClient(ctx context.Context, cpf string, orderDesc bool) ([]domain.Coupon, error)
	// SetUsed помечает купон использованным. Проверок повторного
	// использования и срока действия нет: операция идемпотентна.
	SetUsed(ctx context.Context, id uuid.UUID) error
}

// InMemoryCouponRepository реализация репозитория купонов в памяти
type InMemoryCouponRepository struct {
	coupons map[uuid.UUID]domain.Coupon
	mutex   sync.RWMutex
	log     *logger.Logger
}

// NewInMemoryCouponRepository создает новый репозиторий купонов в памяти
func NewInMemoryCouponRepository(log *logger.Logger) *InMemoryCouponRepository {
	return &InMemoryCouponRepository{
		coupons: make(map[uuid.UUID]domain.Coupon),
		log:     log,
	}
}

// Create сохраняет новый купон
func (r *InMemoryCouponRepository) Create(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}

	r.coupons[coupon.ID] = coupon

	return coupon, nil
}

// GetByID возвращает купон по идентификатору
func (r *InMemoryCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Coupon, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	coupon, exists := r.coupons[id]
	if !exists {
		return domain.Coupon{}, ErrNotFound
	}

	return coupon, nil
}

// GetAll возвращает все купоны
func (r *InMemoryCouponRepository) GetAll(ctx context.Context, orderDesc bool) ([]domain.Coupon, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	coupons := make([]domain.Coupon, 0, len(r.coupons))
	for _, coupon := range r.coupons {
		coupons = append(coupons, coupon)
	}

	if orderDesc {
		sortCouponsDesc(coupons)
	}

	return coupons, nil
}

// GetByClient возвращает купоны клиента
func (r *InMemoryCouponRepository) GetByClient(ctx context.Context, cpf string, orderDesc bool) ([]domain.Coupon, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	coupons := make([]domain.Coupon, 0)
	for _, coupon := range r.coupons {
		if coupon.ClientCPF == cpf {
			coupons = append(coupons, coupon)
		}
	}

	if orderDesc {
		sortCouponsDesc(coupons)
	}

	return coupons, nil
}

// SetUsed помечает купон использованным
func (r *InMemoryCouponRepository) SetUsed(ctx context.Context, id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	coupon, exists := r.coupons[id]
	if !exists {
		return ErrNotFound
	}

	coupon.Used = true
	r.coupons[id] = coupon

	return nil
}

func sortCouponsDesc(coupons []domain.Coupon) {
	sort.Slice(coupons, func(i, j int) bool {
		return coupons[i].IssuedAt.After(coupons[j].IssuedAt)
	})
}
