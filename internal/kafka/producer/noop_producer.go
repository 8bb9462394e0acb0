package producer

import (
	"context"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
)

// noopLoyaltyProducer используется, когда Kafka выключена конфигурацией
type noopLoyaltyProducer struct{}

// NewNoopLoyaltyProducer создает продюсер, отбрасывающий все события
func NewNoopLoyaltyProducer() LoyaltyProducer {
	return noopLoyaltyProducer{}
}

func (noopLoyaltyProducer) PublishPurchaseRecorded(ctx context.Context, purchase domain.Purchase, newBalance int) error {
	return nil
}

func (noopLoyaltyProducer) PublishCouponIssued(ctx context.Context, coupon domain.Coupon) error {
	return nil
}

func (noopLoyaltyProducer) PublishCouponRedeemed(ctx context.Context, coupon domain.Coupon) error {
	return nil
}

func (noopLoyaltyProducer) Close() error {
	return nil
}
