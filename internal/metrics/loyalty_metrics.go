package metrics

import (
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoyaltyMetrics интерфейс для метрик программы лояльности
type LoyaltyMetrics interface {
	IncPurchaseRecorded()
	AddStampsGranted(stamps int)
	IncCouponIssued()
	IncCouponRedeemed()
	ObservePurchaseAmount(amount float64)
}

type loyaltyMetrics struct {
	log               *logger.Logger
	purchasesRecorded prometheus.Counter
	stampsGranted     prometheus.Counter
	couponsIssued     prometheus.Counter
	couponsRedeemed   prometheus.Counter
	purchaseAmounts   prometheus.Histogram
}

// NewLoyaltyMetrics создает новые метрики программы лояльности
func NewLoyaltyMetrics(registry *prometheus.Registry, log *logger.Logger) LoyaltyMetrics {
	purchasesRecorded := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_purchases_recorded_total",
			Help: "The total number of recorded purchases",
		},
	)

	stampsGranted := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_stamps_granted_total",
			Help: "The total number of stamps granted to clients",
		},
	)

	couponsIssued := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_coupons_issued_total",
			Help: "The total number of coupons issued by the threshold rule",
		},
	)

	couponsRedeemed := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_coupons_redeemed_total",
			Help: "The total number of redeemed coupons",
		},
	)

	purchaseAmounts := promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loyalty_purchase_amount",
			Help:    "Purchase amounts distribution",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
		},
	)

	return &loyaltyMetrics{
		log:               log,
		purchasesRecorded: purchasesRecorded,
		stampsGranted:     stampsGranted,
		couponsIssued:     couponsIssued,
		couponsRedeemed:   couponsRedeemed,
		purchaseAmounts:   purchaseAmounts,
	}
}

// IncPurchaseRecorded увеличивает счетчик зарегистрированных покупок
func (m *loyaltyMetrics) IncPurchaseRecorded() {
	m.purchasesRecorded.Inc()
}

// AddStampsGranted увеличивает счетчик начисленных штампов
func (m *loyaltyMetrics) AddStampsGranted(stamps int) {
	m.stampsGranted.Add(float64(stamps))
}

// IncCouponIssued увеличивает счетчик выданных купонов
func (m *loyaltyMetrics) IncCouponIssued() {
	m.couponsIssued.Inc()
}

// IncCouponRedeemed увеличивает счетчик использованных купонов
func (m *loyaltyMetrics) IncCouponRedeemed() {
	m.couponsRedeemed.Inc()
}

// ObservePurchaseAmount записывает сумму покупки
func (m *loyaltyMetrics) ObservePurchaseAmount(amount float64) {
	m.purchaseAmounts.Observe(amount)
}
