package domain

import (
	"time"

	"github.com/google/uuid"
)

// Purchase представляет собой запись о покупке.
// Записи только добавляются и никогда не изменяются.
type Purchase struct {
	ID              uuid.UUID `json:"id"`
	ClientCPF       string    `json:"client_cpf"`
	Amount          float64   `json:"amount"`
	StampsGenerated int       `json:"stamps_generated"`
	CreatedAt       time.Time `json:"created_at"`
}

// PurchaseRequest представляет запрос на регистрацию покупки
type PurchaseRequest struct {
	CPF    string  `json:"cpf" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// PurchaseResult представляет результат регистрации покупки
type PurchaseResult struct {
	PurchaseID      uuid.UUID `json:"purchase_id"`
	StampsGenerated int       `json:"stamps_generated"`
	NewBalance      int       `json:"new_balance"`
	CouponGenerated bool      `json:"coupon_generated"`
}
