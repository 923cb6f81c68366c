// FILE: internal/dto/user_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	Id               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"name"`
	HasPaymentMethod bool      `json:"has_payment_method"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type UpdatePaymentMethodRequest struct {
	CardToken string `json:"card_token" validate:"required,min=8,max=255"`
}
