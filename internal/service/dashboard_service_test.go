package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/pkg/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type dashboardFixture struct {
	clients   *repository.InMemoryClientRepository
	purchases *repository.InMemoryPurchaseRepository
	coupons   repository.CouponRepository
	clock     *clock.Fake
	service   DashboardService
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()

	log := testLogger()
	f := &dashboardFixture{
		clients:   repository.NewInMemoryClientRepository(log),
		purchases: repository.NewInMemoryPurchaseRepository(log),
		coupons:   repository.NewInMemoryCouponRepository(log),
		clock:     clock.NewFake(time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)),
	}

	f.service = NewDashboardService(f.clients, f.purchases, f.coupons, f.clock, log)

	return f
}

func (f *dashboardFixture) addCoupon(t *testing.T, cpf string, issuedAt time.Time, used bool) {
	t.Helper()

	_, err := f.coupons.Create(context.Background(), domain.Coupon{
		ID:         uuid.New(),
		ClientCPF:  cpf,
		Used:       used,
		IssuedAt:   issuedAt,
		ValidUntil: issuedAt.AddDate(0, 0, 30),
	})
	assert.NoError(t, err)
}

func TestOverviewCounts(t *testing.T) {
	f := newDashboardFixture(t)
	now := f.clock.Current

	_, err := f.clients.Create(context.Background(), domain.Client{CPF: "111.111.111-11", Name: "Maria Silva"})
	assert.NoError(t, err)
	_, err = f.clients.Create(context.Background(), domain.Client{CPF: "222.222.222-22", Name: "Joao Souza"})
	assert.NoError(t, err)

	// Две покупки сегодня, одна вчера
	for _, createdAt := range []time.Time{now, now.Add(-time.Hour), now.AddDate(0, 0, -1)} {
		_, err := f.purchases.Create(context.Background(), domain.Purchase{
			ID:        uuid.New(),
			ClientCPF: "111.111.111-11",
			Amount:    150,
			CreatedAt: createdAt,
		})
		assert.NoError(t, err)
	}

	f.addCoupon(t, "111.111.111-11", now.AddDate(0, 0, -5), false)  // активный
	f.addCoupon(t, "111.111.111-11", now.AddDate(0, 0, -40), false) // просроченный
	f.addCoupon(t, "222.222.222-22", now.AddDate(0, 0, -5), true)   // использованный

	overview, err := f.service.Overview(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 2, overview.TotalClients)
	assert.Equal(t, 3, overview.TotalPurchases)
	assert.Equal(t, 3, overview.TotalCoupons)
	assert.Equal(t, 1, overview.ActiveCoupons)
	assert.Equal(t, 2, overview.PurchasesToday)
}

func TestOverviewActiveOnLastValidDay(t *testing.T) {
	f := newDashboardFixture(t)
	now := f.clock.Current

	// Срок действия истекает ровно сейчас: купон еще активен
	_, err := f.coupons.Create(context.Background(), domain.Coupon{
		ID:         uuid.New(),
		ClientCPF:  "111.111.111-11",
		IssuedAt:   now.AddDate(0, 0, -30),
		ValidUntil: now,
	})
	assert.NoError(t, err)

	overview, err := f.service.Overview(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, overview.ActiveCoupons)

	f.clock.Advance(time.Second)
	overview, err = f.service.Overview(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, overview.ActiveCoupons)
}

// unavailableCouponRepo отказывает в любых выборках купонов
type unavailableCouponRepo struct {
	repository.CouponRepository
}

func (r *unavailableCouponRepo) GetAll(ctx context.Context, orderDesc bool) ([]domain.Coupon, error) {
	return nil, errors.New("coupon store unavailable")
}

func TestOverviewSurvivesCouponStoreFailure(t *testing.T) {
	log := testLogger()
	clients := repository.NewInMemoryClientRepository(log)
	purchases := repository.NewInMemoryPurchaseRepository(log)
	coupons := &unavailableCouponRepo{repository.NewInMemoryCouponRepository(log)}
	clk := clock.NewFake(time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC))

	svc := NewDashboardService(clients, purchases, coupons, clk, log)

	_, err := clients.Create(context.Background(), domain.Client{CPF: "111.111.111-11", Name: "Maria Silva"})
	assert.NoError(t, err)
	_, err = purchases.Create(context.Background(), domain.Purchase{
		ID:        uuid.New(),
		ClientCPF: "111.111.111-11",
		Amount:    150,
		CreatedAt: clk.Current,
	})
	assert.NoError(t, err)

	// Сводка строится без купонов вместо полного отказа
	overview, err := svc.Overview(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, overview.TotalClients)
	assert.Equal(t, 1, overview.TotalPurchases)
	assert.Equal(t, 0, overview.TotalCoupons)
	assert.Equal(t, 0, overview.ActiveCoupons)

	// Отчеты по купонам такой поблажки не получают
	_, err = svc.WeeklyCouponBuckets(context.Background())
	assert.Error(t, err)
}

func TestWeeklyCouponBuckets(t *testing.T) {
	f := newDashboardFixture(t)
	now := f.clock.Current

	f.addCoupon(t, "111.111.111-11", now, false)                 // текущее окно
	f.addCoupon(t, "111.111.111-11", now.Add(time.Hour), false)  // текущее окно
	f.addCoupon(t, "111.111.111-11", now.AddDate(0, 0, -7), false)
	f.addCoupon(t, "111.111.111-11", now.AddDate(0, 0, -21), false)
	f.addCoupon(t, "111.111.111-11", now.AddDate(0, 0, -28), false) // за пределами окон

	buckets, err := f.service.WeeklyCouponBuckets(context.Background())
	assert.NoError(t, err)

	if assert.Len(t, buckets, 4) {
		// Старые окна первыми
		assert.Equal(t, 1, buckets[0].Coupons)
		assert.Equal(t, 0, buckets[1].Coupons)
		assert.Equal(t, 1, buckets[2].Coupons)
		assert.Equal(t, 2, buckets[3].Coupons)

		assert.Equal(t, now.AddDate(0, 0, -21), buckets[0].WeekStart)
		assert.Equal(t, now, buckets[3].WeekStart)
		assert.Equal(t, now.AddDate(0, 0, 6), buckets[3].WeekEnd)
		assert.NotEmpty(t, buckets[0].Label)
	}
}

func TestMonthlyCouponBuckets(t *testing.T) {
	f := newDashboardFixture(t)
	now := f.clock.Current // май 2026

	f.addCoupon(t, "111.111.111-11", now, false)
	f.addCoupon(t, "111.111.111-11", now.AddDate(0, 0, -3), false)
	f.addCoupon(t, "111.111.111-11", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), false)
	f.addCoupon(t, "111.111.111-11", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), false)
	f.addCoupon(t, "111.111.111-11", time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), false) // за пределами окна

	buckets, err := f.service.MonthlyCouponBuckets(context.Background())
	assert.NoError(t, err)

	if assert.Len(t, buckets, 6) {
		assert.Equal(t, 2025, buckets[0].Year)
		assert.Equal(t, time.December, buckets[0].Month)
		assert.Equal(t, 1, buckets[0].Coupons)

		assert.Equal(t, time.March, buckets[3].Month)
		assert.Equal(t, 1, buckets[3].Coupons)

		assert.Equal(t, time.May, buckets[5].Month)
		assert.Equal(t, 2, buckets[5].Coupons)
		assert.Equal(t, "May 2026", buckets[5].Label)
	}
}

func TestCouponsFiltered(t *testing.T) {
	f := newDashboardFixture(t)
	now := f.clock.Current

	f.addCoupon(t, "111.111.111-11", now, false)
	f.addCoupon(t, "222.222.222-22", now, false)

	all, err := f.service.CouponsFiltered(context.Background(), "")
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := f.service.CouponsFiltered(context.Background(), "111")
	assert.NoError(t, err)
	if assert.Len(t, filtered, 1) {
		assert.Equal(t, "111.111.111-11", filtered[0].ClientCPF)
	}

	none, err := f.service.CouponsFiltered(context.Background(), "999")
	assert.NoError(t, err)
	assert.Empty(t, none)
}
