package domain

import (
	"time"
)

// Client представляет собой модель клиента программы лояльности.
// CPF служит первичным ключом и после регистрации не меняется.
type Client struct {
	CPF            string     `json:"cpf"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	BirthDate      string     `json:"birth_date"`
	CurrentStamps  int        `json:"current_stamps"`
	LastPurchaseAt *time.Time `json:"last_purchase_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ClientRequest представляет запрос на регистрацию клиента
type ClientRequest struct {
	CPF       string `json:"cpf" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone" binding:"required,min=10"`
	Email     string `json:"email" binding:"required,email"`
	BirthDate string `json:"birth_date" binding:"required"`
}

// ClientUpdateRequest представляет запрос на изменение профиля.
// CPF и баланс штампов через профиль не редактируются.
type ClientUpdateRequest struct {
	Phone     string `json:"phone" binding:"omitempty,min=10"`
	Email     string `json:"email" binding:"omitempty,email"`
	BirthDate string `json:"birth_date"`
}
