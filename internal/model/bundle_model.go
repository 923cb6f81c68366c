package model

import (
	"time"

	"github.com/google/uuid"
)

type Bundle struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID  `gorm:"type:uuid;not null;index"`
	Tier            string     `gorm:"type:bundle_tier;not null"`
	MaxMessages     *int       `gorm:"type:int"` // NULL = unlimited
	MessagesUsed    int        `gorm:"type:int;not null;default:0"`
	Price           float64    `gorm:"type:decimal(10,2);not null"`
	BillingCycle    string     `gorm:"type:billing_cycle;not null"`
	Status          string     `gorm:"type:bundle_status;not null;default:'ACTIVE';index"`
	AutoRenew       bool       `gorm:"not null;default:true"`
	StartDate       time.Time  `gorm:"not null"`
	EndDate         time.Time  `gorm:"not null"`
	RenewalDate     *time.Time `gorm:"index"`
	CancelledAt     *time.Time
	PaymentFailedAt *time.Time
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`

	User *User `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (Bundle) TableName() string {
	return "bundles"
}
