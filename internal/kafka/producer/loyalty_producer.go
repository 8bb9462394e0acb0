package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dhoini/Loyalty-microservice/internal/domain"
	"github.com/Dhoini/Loyalty-microservice/pkg/logger"
	"github.com/IBM/sarama"
)

const (
	TopicPurchaseRecorded = "loyalty.purchase.recorded"
	TopicCouponIssued     = "loyalty.coupon.issued"
	TopicCouponRedeemed   = "loyalty.coupon.redeemed"
)

// PurchaseEvent представляет событие регистрации покупки для Kafka
type PurchaseEvent struct {
	PurchaseID      string    `json:"purchase_id"`
	ClientCPF       string    `json:"client_cpf"`
	Amount          float64   `json:"amount"`
	StampsGenerated int       `json:"stamps_generated"`
	NewBalance      int       `json:"new_balance"`
	Timestamp       time.Time `json:"timestamp"`
}

// CouponEvent представляет событие жизненного цикла купона для Kafka
type CouponEvent struct {
	CouponID     string    `json:"coupon_id"`
	ClientCPF    string    `json:"client_cpf"`
	DiscountRate float64   `json:"discount_rate,omitempty"`
	ValidUntil   time.Time `json:"valid_until,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// LoyaltyProducer интерфейс для отправки событий программы лояльности
type LoyaltyProducer interface {
	PublishPurchaseRecorded(ctx context.Context, purchase domain.Purchase, newBalance int) error
	PublishCouponIssued(ctx context.Context, coupon domain.Coupon) error
	PublishCouponRedeemed(ctx context.Context, coupon domain.Coupon) error
	Close() error
}

type kafkaLoyaltyProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaLoyaltyProducer создает новый продюсер событий лояльности
func NewKafkaLoyaltyProducer(producer sarama.SyncProducer, log *logger.Logger) LoyaltyProducer {
	return &kafkaLoyaltyProducer{
		producer: producer,
		log:      log,
	}
}

// PublishPurchaseRecorded публикует событие о регистрации покупки
func (p *kafkaLoyaltyProducer) PublishPurchaseRecorded(ctx context.Context, purchase domain.Purchase, newBalance int) error {
	event := PurchaseEvent{
		PurchaseID:      purchase.ID.String(),
		ClientCPF:       purchase.ClientCPF,
		Amount:          purchase.Amount,
		StampsGenerated: purchase.StampsGenerated,
		NewBalance:      newBalance,
		Timestamp:       time.Now(),
	}

	return p.publishEvent(TopicPurchaseRecorded, purchase.ClientCPF, event)
}

// PublishCouponIssued публикует событие о выдаче купона
func (p *kafkaLoyaltyProducer) PublishCouponIssued(ctx context.Context, coupon domain.Coupon) error {
	event := CouponEvent{
		CouponID:     coupon.ID.String(),
		ClientCPF:    coupon.ClientCPF,
		DiscountRate: coupon.DiscountRate,
		ValidUntil:   coupon.ValidUntil,
		Timestamp:    time.Now(),
	}

	return p.publishEvent(TopicCouponIssued, coupon.ClientCPF, event)
}

// PublishCouponRedeemed публикует событие об использовании купона
func (p *kafkaLoyaltyProducer) PublishCouponRedeemed(ctx context.Context, coupon domain.Coupon) error {
	event := CouponEvent{
		CouponID:  coupon.ID.String(),
		ClientCPF: coupon.ClientCPF,
		Timestamp: time.Now(),
	}

	return p.publishEvent(TopicCouponRedeemed, coupon.ClientCPF, event)
}

// publishEvent публикует событие в Kafka.
// Ключом сообщения служит CPF клиента: все события одного клиента
// попадают в одну партицию и сохраняют порядок.
func (p *kafkaLoyaltyProducer) publishEvent(topic, key string, event interface{}) error {
	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal loyalty event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(topic),
			},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish loyalty event: %w", err)
	}

	p.log.Info("Published loyalty event to topic %s: partition=%d offset=%d",
		topic, partition, offset)

	return nil
}

// Close закрывает продюсер
func (p *kafkaLoyaltyProducer) Close() error {
	return p.producer.Close()
}
