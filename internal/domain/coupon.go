package domain

import (
	"time"

	"github.com/google/uuid"
)

// Coupon представляет собой скидочный купон клиента
type Coupon struct {
	ID           uuid.UUID `json:"id"`
	ClientCPF    string    `json:"client_cpf"`
	DiscountRate float64   `json:"discount_rate"`
	Used         bool      `json:"used"`
	IssuedAt     time.Time `json:"issued_at"`
	ValidUntil   time.Time `json:"valid_until"`
}

// IsActive сообщает, действителен ли купон на момент now.
// Единственная реализация предиката активности: купон не использован
// и срок действия не истек.
func (c Coupon) IsActive(now time.Time) bool {
	return !c.Used && !now.After(c.ValidUntil)
}
