package mapper

import (
	"ai-chat-quota-be/internal/dto"
	"ai-chat-quota-be/internal/entity"
)

func ToBundleResponse(b *entity.Bundle) *dto.BundleResponse {
	return &dto.BundleResponse{
		Id:                b.Id,
		Tier:              string(b.Tier),
		MaxMessages:       copyInt(b.MaxMessages),
		MessagesUsed:      b.MessagesUsed,
		RemainingMessages: b.RemainingMessages(),
		Price:             b.Price,
		BillingCycle:      string(b.BillingCycle),
		Status:            string(b.Status),
		AutoRenew:         b.AutoRenew,
		StartDate:         b.StartDate,
		EndDate:           b.EndDate,
		RenewalDate:       b.RenewalDate,
		CancelledAt:       b.CancelledAt,
		PaymentFailedAt:   b.PaymentFailedAt,
		CreatedAt:         b.CreatedAt,
	}
}

func ToBundleResponses(bundles []*entity.Bundle) []*dto.BundleResponse {
	res := make([]*dto.BundleResponse, 0, len(bundles))
	for _, b := range bundles {
		res = append(res, ToBundleResponse(b))
	}
	return res
}

func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		Id:               u.Id,
		Email:            u.Email,
		FullName:         u.FullName,
		HasPaymentMethod: u.HasPaymentMethod(),
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func ToChatResponse(m *entity.ChatMessage) *dto.ChatResponse {
	return &dto.ChatResponse{
		Id:         m.Id,
		Question:   m.Question,
		Answer:     m.Answer,
		TokensUsed: m.TokensUsed,
		BundleId:   m.Metadata.BundleId,
		CreatedAt:  m.CreatedAt,
	}
}
