package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dhoini/Loyalty-microservice/internal/cpf"
	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/internal/kafka/producer"
	"github.com/Dhoini/Loyalty-microservice/internal/loyalty"
	"github.com/Dhoini/Loyalty-microservice/internal/metrics"
	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/pkg/clock"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/google/uuid"
)

// LoyaltyService интерфейс сервиса программы лояльности
type LoyaltyService interface {
	// RecordPurchase регистрирует покупку: начисляет штампы и при
	// достижении порога выдает купон со сбросом баланса.
	RecordPurchase(ctx context.Context, req domain.PurchaseRequest) (domain.PurchaseResult, error)
	RedeemCoupon(ctx context.Context, id string) (domain.Coupon, error)
	PurchasesByClient(ctx context.Context, identifier string) ([]domain.Purchase, error)
	CouponsByClient(ctx context.Context, identifier string) ([]domain.Coupon, error)
	AllPurchases(ctx context.Context) ([]domain.Purchase, error)
	AllCoupons(ctx context.Context) ([]domain.Coupon, error)
}

type loyaltyService struct {
	clients   repository.ClientRepository
	purchases repository.PurchaseRepository
	coupons   repository.CouponRepository
	producer  producer.LoyaltyProducer
	metrics   metrics.LoyaltyMetrics
	clock     clock.Clock
	locks     clientLocks
	log       *logger.Logger
}

// NewLoyaltyService создает новый сервис программы лояльности
func NewLoyaltyService(
	clients repository.ClientRepository,
	purchases repository.PurchaseRepository,
	coupons repository.CouponRepository,
	loyaltyProducer producer.LoyaltyProducer,
	loyaltyMetrics metrics.LoyaltyMetrics,
	clk clock.Clock,
	log *logger.Logger,
) LoyaltyService {
	return &loyaltyService{
		clients:   clients,
		purchases: purchases,
		coupons:   coupons,
		producer:  loyaltyProducer,
		metrics:   loyaltyMetrics,
		clock:     clk,
		log:       log,
	}
}

// clientLocks сериализует операции чтения-изменения-записи по клиенту.
// Без этого две одновременные покупки одного клиента читают один и тот
// же баланс и теряют обновление либо выдают два купона за одно
// пересечение порога.
type clientLocks struct {
	locks sync.Map
}

func (l *clientLocks) forClient(key string) *sync.Mutex {
	actual, _ := l.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// RecordPurchase регистрирует покупку клиента
func (s *loyaltyService) RecordPurchase(ctx context.Context, req domain.PurchaseRequest) (domain.PurchaseResult, error) {
	if !cpf.IsValid(req.CPF) {
		s.log.Warn("Invalid CPF on purchase: %s", req.CPF)
		return domain.PurchaseResult{}, fmt.Errorf("%w: cpf must contain exactly 11 digits", repository.ErrInvalidData)
	}
	if req.Amount <= 0 {
		return domain.PurchaseResult{}, fmt.Errorf("%w: amount must be positive", repository.ErrInvalidData)
	}

	key := cpf.Format(req.CPF)

	lock := s.locks.forClient(key)
	lock.Lock()
	defer lock.Unlock()

	client, err := s.resolveClient(ctx, key, req.CPF)
	if err != nil {
		return domain.PurchaseResult{}, err
	}

	now := s.clock.Now()
	stamps := loyalty.StampsFor(req.Amount)

	purchase := domain.Purchase{
		ID:              uuid.New(),
		ClientCPF:       client.CPF,
		Amount:          req.Amount,
		StampsGenerated: stamps,
		CreatedAt:       now,
	}

	purchase, err = s.purchases.Create(ctx, purchase)
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("failed to persist purchase: %w", err)
	}

	result := domain.PurchaseResult{
		PurchaseID:      purchase.ID,
		StampsGenerated: stamps,
	}

	newBalance := client.CurrentStamps + stamps
	if newBalance >= loyalty.CouponThreshold {
		// Порог достигнут: выдаем купон и сбрасываем баланс в ноль.
		// Излишек сверх порога не переносится.
		coupon, err := s.issueCoupon(ctx, client.CPF, now)
		if err != nil {
			return domain.PurchaseResult{}, err
		}

		if err := s.clients.UpdateStamps(ctx, client.CPF, 0, now); err != nil {
			return domain.PurchaseResult{}, fmt.Errorf("failed to reset client stamps: %w", err)
		}

		result.CouponGenerated = true
		result.NewBalance = 0

		s.metrics.IncCouponIssued()
		if err := s.producer.PublishCouponIssued(ctx, coupon); err != nil {
			s.log.Errorw("Failed to publish coupon issued event", "error", err, "couponID", coupon.ID)
		}

		s.log.Infow("Coupon issued on threshold crossing",
			"cpf", client.CPF, "stamps", stamps, "balance_before", client.CurrentStamps)
	} else {
		if err := s.clients.UpdateStamps(ctx, client.CPF, newBalance, now); err != nil {
			return domain.PurchaseResult{}, fmt.Errorf("failed to update client stamps: %w", err)
		}

		result.NewBalance = newBalance
	}

	s.metrics.IncPurchaseRecorded()
	s.metrics.AddStampsGranted(stamps)
	s.metrics.ObservePurchaseAmount(req.Amount)

	if err := s.producer.PublishPurchaseRecorded(ctx, purchase, result.NewBalance); err != nil {
		s.log.Errorw("Failed to publish purchase recorded event", "error", err, "purchaseID", purchase.ID)
	}

	return result, nil
}

// resolveClient находит клиента по каноническому ключу, затем по
// идентификатору в исходном виде
func (s *loyaltyService) resolveClient(ctx context.Context, key, raw string) (domain.Client, error) {
	client, err := s.clients.GetByCPF(ctx, key)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Client{}, err
	}

	if raw != key {
		client, err = s.clients.GetByCPF(ctx, raw)
		if err == nil {
			return client, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return domain.Client{}, err
		}
	}

	return domain.Client{}, fmt.Errorf("%w: client %s is not registered", repository.ErrNotFound, key)
}

// issueCoupon создает купон с фиксированной скидкой и сроком действия
// 30 календарных дней от момента выдачи
func (s *loyaltyService) issueCoupon(ctx context.Context, clientCPF string, now time.Time) (domain.Coupon, error) {
	coupon := domain.Coupon{
		ID:           uuid.New(),
		ClientCPF:    clientCPF,
		DiscountRate: loyalty.CouponDiscountRate,
		Used:         false,
		IssuedAt:     now,
		ValidUntil:   now.AddDate(0, 0, loyalty.CouponValidityDays),
	}

	coupon, err := s.coupons.Create(ctx, coupon)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("failed to persist coupon: %w", err)
	}

	return coupon, nil
}

// RedeemCoupon помечает купон использованным. Повторный вызов для того
// же купона безвреден; срок действия при погашении не проверяется.
func (s *loyaltyService) RedeemCoupon(ctx context.Context, id string) (domain.Coupon, error) {
	couponID, err := uuid.Parse(id)
	if err != nil {
		s.log.Warn("Invalid coupon ID format: %s", id)
		return domain.Coupon{}, fmt.Errorf("%w: invalid coupon id", repository.ErrInvalidData)
	}

	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		return domain.Coupon{}, err
	}

	if err := s.coupons.SetUsed(ctx, couponID); err != nil {
		return domain.Coupon{}, err
	}

	coupon.Used = true

	s.metrics.IncCouponRedeemed()
	if err := s.producer.PublishCouponRedeemed(ctx, coupon); err != nil {
		s.log.Errorw("Failed to publish coupon redeemed event", "error", err, "couponID", coupon.ID)
	}

	return coupon, nil
}

// PurchasesByClient возвращает историю покупок клиента, новые первыми.
// Если хранилище отклоняет упорядоченный запрос, выполняется обычная
// выборка с сортировкой на нашей стороне.
func (s *loyaltyService) PurchasesByClient(ctx context.Context, identifier string) ([]domain.Purchase, error) {
	key := s.historyKey(identifier)

	purchases, err := s.purchases.GetByClient(ctx, key, true)
	if err != nil {
		s.log.Warnw("Ordered purchase query failed, falling back to client-side sort", "error", err, "cpf", key)

		purchases, err = s.purchases.GetByClient(ctx, key, false)
		if err != nil {
			return nil, err
		}

		sort.Slice(purchases, func(i, j int) bool {
			return purchases[i].CreatedAt.After(purchases[j].CreatedAt)
		})
	}

	return purchases, nil
}

// CouponsByClient возвращает купоны клиента, новые первыми, с тем же
// запасным путем, что и история покупок
func (s *loyaltyService) CouponsByClient(ctx context.Context, identifier string) ([]domain.Coupon, error) {
	key := s.historyKey(identifier)

	coupons, err := s.coupons.GetByClient(ctx, key, true)
	if err != nil {
		s.log.Warnw("Ordered coupon query failed, falling back to client-side sort", "error", err, "cpf", key)

		coupons, err = s.coupons.GetByClient(ctx, key, false)
		if err != nil {
			return nil, err
		}

		sort.Slice(coupons, func(i, j int) bool {
			return coupons[i].IssuedAt.After(coupons[j].IssuedAt)
		})
	}

	return coupons, nil
}

// AllPurchases возвращает все покупки для административных отчетов
func (s *loyaltyService) AllPurchases(ctx context.Context) ([]domain.Purchase, error) {
	return s.purchases.GetAll(ctx)
}

// AllCoupons возвращает все купоны, новые первыми, с запасным путем
// при отказе упорядоченного запроса
func (s *loyaltyService) AllCoupons(ctx context.Context) ([]domain.Coupon, error) {
	coupons, err := s.coupons.GetAll(ctx, true)
	if err != nil {
		s.log.Warnw("Ordered coupon query failed, falling back to client-side sort", "error", err)

		coupons, err = s.coupons.GetAll(ctx, false)
		if err != nil {
			return nil, err
		}

		sort.Slice(coupons, func(i, j int) bool {
			return coupons[i].IssuedAt.After(coupons[j].IssuedAt)
		})
	}

	return coupons, nil
}

// historyKey приводит идентификатор клиента к каноническому ключу,
// если он содержит 11 цифр, иначе оставляет как есть
func (s *loyaltyService) historyKey(identifier string) string {
	if cpf.IsValid(identifier) {
		return cpf.Format(identifier)
	}
	return identifier
}
