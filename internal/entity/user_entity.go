// FILE: internal/entity/user_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	// Gateway token of the saved card used for renewals. Nil until the user stores one.
	PaymentCardToken *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) HasPaymentMethod() bool {
	return u.PaymentCardToken != nil && *u.PaymentCardToken != ""
}
