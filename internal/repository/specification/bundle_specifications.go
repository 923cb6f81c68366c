package specification

import (
	"time"

	"ai-chat-quota-be/internal/entity"

	"gorm.io/gorm"
)

type ByBundleStatus struct {
	Status entity.BundleStatus
}

func (s ByBundleStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

type AutoRenewEnabled struct{}

func (s AutoRenewEnabled) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("auto_renew = ?", true)
}

// RenewalDueBy matches bundles whose renewal date is at or before At.
type RenewalDueBy struct {
	At time.Time
}

func (s RenewalDueBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("renewal_date IS NOT NULL AND renewal_date <= ?", s.At)
}
