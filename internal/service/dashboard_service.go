package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/pkg/clock"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
)

const (
	weeklyBucketCount  = 4
	monthlyBucketCount = 6
)

// DashboardService интерфейс сводных отчетов админ-панели
type DashboardService interface {
	Overview(ctx context.Context) (domain.DashboardOverview, error)
	WeeklyCouponBuckets(ctx context.Context) ([]domain.WeeklyCouponBucket, error)
	MonthlyCouponBuckets(ctx context.Context) ([]domain.MonthlyCouponBucket, error)
	CouponsFiltered(ctx context.Context, cpfTerm string) ([]domain.Coupon, error)
}

type dashboardService struct {
	clients   repository.ClientRepository
	purchases repository.PurchaseRepository
	coupons   repository.CouponRepository
	clock     clock.Clock
	log       *logger.Logger
}

// NewDashboardService создает новый сервис сводных отчетов
func NewDashboardService(
	clients repository.ClientRepository,
	purchases repository.PurchaseRepository,
	coupons repository.CouponRepository,
	clk clock.Clock,
	log *logger.Logger,
) DashboardService {
	return &dashboardService{
		clients:   clients,
		purchases: purchases,
		coupons:   coupons,
		clock:     clk,
		log:       log,
	}
}

// Overview загружает сводную статистику. Клиенты и покупки обязательны;
// купоны подгружаются по возможности — при ошибке отчет строится без
// них, а не падает целиком.
func (s *dashboardService) Overview(ctx context.Context) (domain.DashboardOverview, error) {
	clients, err := s.clients.GetAll(ctx)
	if err != nil {
		return domain.DashboardOverview{}, fmt.Errorf("failed to load clients: %w", err)
	}

	purchases, err := s.purchases.GetAll(ctx)
	if err != nil {
		return domain.DashboardOverview{}, fmt.Errorf("failed to load purchases: %w", err)
	}

	coupons, err := s.loadCoupons(ctx)
	if err != nil {
		s.log.Warnw("Failed to load coupons for overview, continuing without them", "error", err)
		coupons = []domain.Coupon{}
	}

	now := s.clock.Now()

	overview := domain.DashboardOverview{
		TotalClients:   len(clients),
		TotalPurchases: len(purchases),
		TotalCoupons:   len(coupons),
	}

	for _, coupon := range coupons {
		if coupon.IsActive(now) {
			overview.ActiveCoupons++
		}
	}

	year, month, day := now.Date()
	for _, purchase := range purchases {
		py, pm, pd := purchase.CreatedAt.Date()
		if py == year && pm == month && pd == day {
			overview.PurchasesToday++
		}
	}

	return overview, nil
}

// WeeklyCouponBuckets возвращает выдачу купонов по четырем скользящим
// 7-дневным окнам, привязанным к текущему моменту, старые первыми
func (s *dashboardService) WeeklyCouponBuckets(ctx context.Context) ([]domain.WeeklyCouponBucket, error) {
	coupons, err := s.loadCoupons(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	buckets := make([]domain.WeeklyCouponBucket, 0, weeklyBucketCount)

	for i := weeklyBucketCount - 1; i >= 0; i-- {
		weekStart := now.AddDate(0, 0, -i*7)
		weekEnd := weekStart.AddDate(0, 0, 6)

		bucket := domain.WeeklyCouponBucket{
			WeekStart: weekStart,
			WeekEnd:   weekEnd,
			Label: fmt.Sprintf("%d/%d - %d/%d",
				weekStart.Day(), int(weekStart.Month()),
				weekEnd.Day(), int(weekEnd.Month())),
		}

		for _, coupon := range coupons {
			if !coupon.IssuedAt.Before(weekStart) && !coupon.IssuedAt.After(weekEnd) {
				bucket.Coupons++
			}
		}

		buckets = append(buckets, bucket)
	}

	return buckets, nil
}

// MonthlyCouponBuckets возвращает выдачу купонов по шести календарным
// месяцам, заканчивая текущим, старые первыми
func (s *dashboardService) MonthlyCouponBuckets(ctx context.Context) ([]domain.MonthlyCouponBucket, error) {
	coupons, err := s.loadCoupons(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	buckets := make([]domain.MonthlyCouponBucket, 0, monthlyBucketCount)

	for i := monthlyBucketCount - 1; i >= 0; i-- {
		monthDate := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())

		bucket := domain.MonthlyCouponBucket{
			Year:  monthDate.Year(),
			Month: monthDate.Month(),
			Label: monthDate.Format("Jan 2006"),
		}

		for _, coupon := range coupons {
			if coupon.IssuedAt.Year() == monthDate.Year() && coupon.IssuedAt.Month() == monthDate.Month() {
				bucket.Coupons++
			}
		}

		buckets = append(buckets, bucket)
	}

	return buckets, nil
}

// CouponsFiltered возвращает купоны, чей CPF клиента содержит подстроку
// фильтра; пустой фильтр возвращает все купоны
func (s *dashboardService) CouponsFiltered(ctx context.Context, cpfTerm string) ([]domain.Coupon, error) {
	coupons, err := s.loadCoupons(ctx)
	if err != nil {
		return nil, err
	}

	cpfTerm = strings.TrimSpace(cpfTerm)
	if cpfTerm == "" {
		return coupons, nil
	}

	needle := strings.ToLower(cpfTerm)
	filtered := make([]domain.Coupon, 0)
	for _, coupon := range coupons {
		if strings.Contains(strings.ToLower(coupon.ClientCPF), needle) {
			filtered = append(filtered, coupon)
		}
	}

	return filtered, nil
}

// loadCoupons выполняет упорядоченную выборку купонов с запасным путем:
// обычная выборка и сортировка на нашей стороне
func (s *dashboardService) loadCoupons(ctx context.Context) ([]domain.Coupon, error) {
	coupons, err := s.coupons.GetAll(ctx, true)
	if err == nil {
		return coupons, nil
	}

	s.log.Warnw("Ordered coupon query failed, falling back to client-side sort", "error", err)

	coupons, err = s.coupons.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(coupons, func(i, j int) bool {
		return coupons[i].IssuedAt.After(coupons[j].IssuedAt)
	})

	return coupons, nil
}
