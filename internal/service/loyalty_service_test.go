package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/internal/loyalty"
	"github.com/Dhoini/Loyalty-microservice/internal/metrics"
	"github.com/Dhoini/Loyalty-microservice/internal/repository"
	"github.com/Dhoini/Loyalty-microservice/pkg/clock"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

// recordingProducer собирает опубликованные события в памяти
type recordingProducer struct {
	mutex             sync.Mutex
	purchasesRecorded int
	couponsIssued     []domain.Coupon
	couponsRedeemed   []domain.Coupon
}

func (p *recordingProducer) PublishPurchaseRecorded(ctx context.Context, purchase domain.Purchase, newBalance int) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.purchasesRecorded++
	return nil
}

func (p *recordingProducer) PublishCouponIssued(ctx context.Context, coupon domain.Coupon) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.couponsIssued = append(p.couponsIssued, coupon)
	return nil
}

func (p *recordingProducer) PublishCouponRedeemed(ctx context.Context, coupon domain.Coupon) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.couponsRedeemed = append(p.couponsRedeemed, coupon)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func testLogger() *logger.Logger {
	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)
	return log
}

type loyaltyFixture struct {
	clients   *repository.InMemoryClientRepository
	purchases *repository.InMemoryPurchaseRepository
	coupons   repository.CouponRepository
	producer  *recordingProducer
	clock     *clock.Fake
	service   LoyaltyService
}

func newLoyaltyFixture(t *testing.T) *loyaltyFixture {
	t.Helper()

	log := testLogger()
	f := &loyaltyFixture{
		clients:   repository.NewInMemoryClientRepository(log),
		purchases: repository.NewInMemoryPurchaseRepository(log),
		coupons:   repository.NewInMemoryCouponRepository(log),
		producer:  &recordingProducer{},
		clock:     clock.NewFake(time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)),
	}

	f.service = NewLoyaltyService(
		f.clients,
		f.purchases,
		f.coupons,
		f.producer,
		metrics.NewLoyaltyMetrics(prometheus.NewRegistry(), log),
		f.clock,
		log,
	)

	return f
}

func (f *loyaltyFixture) seedClient(t *testing.T, cpf string, stamps int) domain.Client {
	t.Helper()

	client, err := f.clients.Create(context.Background(), domain.Client{
		CPF:           cpf,
		Name:          "Maria Silva",
		Phone:         "11999990000",
		Email:         "maria@example.com",
		CurrentStamps: stamps,
	})
	assert.NoError(t, err)

	return client
}

func TestRecordPurchaseAccumulatesStamps(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.seedClient(t, "123.456.789-01", 0)

	result, err := f.service.RecordPurchase(context.Background(), domain.PurchaseRequest{
		CPF:    "12345678901",
		Amount: 450,
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, result.StampsGenerated)
	assert.Equal(t, 3, result.NewBalance)
	assert.False(t, result.CouponGenerated)

	client, err := f.clients.GetByCPF(context.Background(), "123.456.789-01")
	assert.NoError(t, err)
	assert.Equal(t, 3, client.CurrentStamps)
	if assert.NotNil(t, client.LastPurchaseAt) {
		assert.Equal(t, f.clock.Current, *client.LastPurchaseAt)
	}
}

func TestRecordPurchaseBelowUnitValueKeepsBalance(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.seedClient(t, "123.456.789-01", 3)

	result, err := f.service.RecordPurchase(context.Background(), domain.PurchaseRequest{
		CPF:    "12345678901",
		Amount: 149,
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.StampsGenerated)
	assert.Equal(t, 3, result.NewBalance)
	assert.False(t, result.CouponGenerated)

	// Покупка фиксируется даже без начисления штампов
	purchases, err := f.purchases.GetAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestRecordPurchaseIssuesCouponAtThreshold(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.seedClient(t, "123.456.789-01", 8)

	result, err := f.service.RecordPurchase(context.Background(), domain.PurchaseRequest{
		CPF:    "12345678901",
		Amount: 300,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.StampsGenerated)
	assert.True(t, result.CouponGenerated)
	assert.Equal(t, 0, result.NewBalance)

	client, err := f.clients.GetByCPF(context.Background(), "123.456.789-01")
	assert.NoError(t, err)
	assert.Equal(t, 0, client.CurrentStamps)

	coupons, err := f.coupons.GetByClient(context.Background(), "123.456.789-01", false)
	assert.NoError(t, err)
	if assert.Len(t, coupons, 1) {
		coupon := coupons[0]
		assert.Equal(t, loyalty.CouponDiscountRate, coupon.DiscountRate)
		assert.False(t, coupon.Used)
		assert.Equal(t, f.clock.Current, coupon.IssuedAt)
		assert.Equal(t, f.clock.Current.AddDate(0, 0, 30), coupon.ValidUntil)
	}

	assert.Len(t, f.producer.couponsIssued, 1)
}

func TestRecordPurchaseDiscardsSurplusAboveThreshold(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.seedClient(t, "123.456.789-01", 9)

	// 9 + 3 = 12: порог пересечен, излишек в 2 штампа не переносится
	result, err := f.service.RecordPurchase(context.Background(), domain.PurchaseRequest{
		CPF:    "12345678901",
		Amount: 450,
	})

	assert.NoError(t, err)
	assert.True(t, result.CouponGenerated)
	assert.Equal(t, 0, result.NewBalance)

	client, err := f.clients.GetByCPF(context.Background(), "123.456.789-01")
	assert.NoError(t, err)
	assert.Equal(t, 0, client.CurrentStamps)
}

func TestRecordPurchaseUnknownClient(t *testing.T) {
	f := newLoyaltyFixture(t)

	_, err := f.service.RecordPurchase(context.Background(), domain.PurchaseRequest{
		CPF:    "12345678901",
		Amount: 300,
	})

	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Покупка незарегистрированного клиента не сохраняется
	purchases, err := f.purchases.GetAll(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, purchases)
}

func TestRecordPurchaseValidation(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.seedClient(t, "123.456.789-01", 0)

	tests := []struct {
		name string
		req  domain.PurchaseRequest
	}{
		{"short cpf", domain.PurchaseRequest{CPF: "123", Amount: 300}},
		{"empty cpf", domain.PurchaseRequest{CPF: "", Amount: 300}},
		{"zero amount", domain.PurchaseRequest{CPF: "12345678901", Amount: 0}},
		{"negative amount", domain.PurchaseRequest{CPF: "12345678901", Amount: -50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.RecordPurchase(context.Background(), tt.req)
			assert.ErrorIs(t, err, repository.ErrInvalidData)
		})
	}
}

func TestRecordPurchaseConcurrentSingleCoupon(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.seedClient(t, "123.456.789-01", 8)

	const workers = 10

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.service.RecordPurchase(context.Background(), domain.PurchaseRequest{
				CPF:    "12345678901",
				Amount: 150,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// 8 + 10 штампов: ровно одно пересечение порога, ровно один купон
	coupons, err := f.coupons.GetByClient(context.Background(), "123.456.789-01", false)
	assert.NoError(t, err)
	assert.Len(t, coupons, 1)

	client, err := f.clients.GetByCPF(context.Background(), "123.456.789-01")
	assert.NoError(t, err)
	assert.Equal(t, 8, client.CurrentStamps)
}

func TestRedeemCouponIdempotent(t *testing.T) {
	f := newLoyaltyFixture(t)

	coupon, err := f.coupons.Create(context.Background(), domain.Coupon{
		ID:           uuid.New(),
		ClientCPF:    "123.456.789-01",
		DiscountRate: loyalty.CouponDiscountRate,
		IssuedAt:     f.clock.Current,
		ValidUntil:   f.clock.Current.AddDate(0, 0, 30),
	})
	assert.NoError(t, err)

	first, err := f.service.RedeemCoupon(context.Background(), coupon.ID.String())
	assert.NoError(t, err)
	assert.True(t, first.Used)

	second, err := f.service.RedeemCoupon(context.Background(), coupon.ID.String())
	assert.NoError(t, err)
	assert.True(t, second.Used)

	assert.Len(t, f.producer.couponsRedeemed, 2)
}

func TestRedeemCouponIgnoresExpiry(t *testing.T) {
	f := newLoyaltyFixture(t)

	coupon, err := f.coupons.Create(context.Background(), domain.Coupon{
		ID:           uuid.New(),
		ClientCPF:    "123.456.789-01",
		DiscountRate: loyalty.CouponDiscountRate,
		IssuedAt:     f.clock.Current.AddDate(0, 0, -60),
		ValidUntil:   f.clock.Current.AddDate(0, 0, -30),
	})
	assert.NoError(t, err)

	redeemed, err := f.service.RedeemCoupon(context.Background(), coupon.ID.String())
	assert.NoError(t, err)
	assert.True(t, redeemed.Used)
}

func TestRedeemCouponErrors(t *testing.T) {
	f := newLoyaltyFixture(t)

	_, err := f.service.RedeemCoupon(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrInvalidData)

	_, err = f.service.RedeemCoupon(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// orderRejectingCouponRepo отклоняет упорядоченные выборки, как это
// делает хранилище без подходящего индекса
type orderRejectingCouponRepo struct {
	*repository.InMemoryCouponRepository
}

func (r *orderRejectingCouponRepo) GetAll(ctx context.Context, orderDesc bool) ([]domain.Coupon, error) {
	if orderDesc {
		return nil, repository.ErrOrderNotSupported
	}
	return r.InMemoryCouponRepository.GetAll(ctx, false)
}

func (r *orderRejectingCouponRepo) GetByClient(ctx context.Context, cpf string, orderDesc bool) ([]domain.Coupon, error) {
	if orderDesc {
		return nil, repository.ErrOrderNotSupported
	}
	return r.InMemoryCouponRepository.GetByClient(ctx, cpf, false)
}

type orderRejectingPurchaseRepo struct {
	*repository.InMemoryPurchaseRepository
}

func (r *orderRejectingPurchaseRepo) GetByClient(ctx context.Context, cpf string, orderDesc bool) ([]domain.Purchase, error) {
	if orderDesc {
		return nil, repository.ErrOrderNotSupported
	}
	return r.InMemoryPurchaseRepository.GetByClient(ctx, cpf, false)
}

func TestHistoriesFallBackToClientSideSort(t *testing.T) {
	log := testLogger()
	clients := repository.NewInMemoryClientRepository(log)
	purchases := &orderRejectingPurchaseRepo{repository.NewInMemoryPurchaseRepository(log)}
	coupons := &orderRejectingCouponRepo{repository.NewInMemoryCouponRepository(log)}
	clk := clock.NewFake(time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC))

	svc := NewLoyaltyService(
		clients,
		purchases,
		coupons,
		&recordingProducer{},
		metrics.NewLoyaltyMetrics(prometheus.NewRegistry(), log),
		clk,
		log,
	)

	base := clk.Current
	for i := 0; i < 3; i++ {
		_, err := purchases.Create(context.Background(), domain.Purchase{
			ID:        uuid.New(),
			ClientCPF: "123.456.789-01",
			Amount:    150,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		assert.NoError(t, err)

		_, err = coupons.Create(context.Background(), domain.Coupon{
			ID:        uuid.New(),
			ClientCPF: "123.456.789-01",
			IssuedAt:  base.Add(time.Duration(i) * time.Hour),
		})
		assert.NoError(t, err)
	}

	history, err := svc.PurchasesByClient(context.Background(), "12345678901")
	assert.NoError(t, err)
	if assert.Len(t, history, 3) {
		assert.True(t, history[0].CreatedAt.After(history[1].CreatedAt))
		assert.True(t, history[1].CreatedAt.After(history[2].CreatedAt))
	}

	clientCoupons, err := svc.CouponsByClient(context.Background(), "12345678901")
	assert.NoError(t, err)
	if assert.Len(t, clientCoupons, 3) {
		assert.True(t, clientCoupons[0].IssuedAt.After(clientCoupons[1].IssuedAt))
		assert.True(t, clientCoupons[1].IssuedAt.After(clientCoupons[2].IssuedAt))
	}

	all, err := svc.AllCoupons(context.Background())
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}
