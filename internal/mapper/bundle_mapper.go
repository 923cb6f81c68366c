package mapper

import (
	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/model"
)

type BundleMapper struct{}

func NewBundleMapper() *BundleMapper {
	return &BundleMapper{}
}

func (m *BundleMapper) ToEntity(b *model.Bundle) *entity.Bundle {
	if b == nil {
		return nil
	}
	return &entity.Bundle{
		Id:              b.Id,
		UserId:          b.UserId,
		Tier:            entity.BundleTier(b.Tier),
		MaxMessages:     copyInt(b.MaxMessages),
		MessagesUsed:    b.MessagesUsed,
		Price:           b.Price,
		BillingCycle:    entity.BillingCycle(b.BillingCycle),
		Status:          entity.BundleStatus(b.Status),
		AutoRenew:       b.AutoRenew,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		RenewalDate:     b.RenewalDate,
		CancelledAt:     b.CancelledAt,
		PaymentFailedAt: b.PaymentFailedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (m *BundleMapper) ToModel(b *entity.Bundle) *model.Bundle {
	if b == nil {
		return nil
	}
	return &model.Bundle{
		Id:              b.Id,
		UserId:          b.UserId,
		Tier:            string(b.Tier),
		MaxMessages:     copyInt(b.MaxMessages),
		MessagesUsed:    b.MessagesUsed,
		Price:           b.Price,
		BillingCycle:    string(b.BillingCycle),
		Status:          string(b.Status),
		AutoRenew:       b.AutoRenew,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		RenewalDate:     b.RenewalDate,
		CancelledAt:     b.CancelledAt,
		PaymentFailedAt: b.PaymentFailedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
