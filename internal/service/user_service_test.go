package service

import (
	"context"
	"testing"

	"ai-chat-quota-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Profile(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.clock, f.log)
	user := f.seedUser(t, "nina@example.com")

	profile, err := svc.GetProfile(context.Background(), user.Id)
	require.NoError(t, err)
	assert.Equal(t, "nina@example.com", profile.Email)
	assert.False(t, profile.HasPaymentMethod)

	_, err = svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UpdatePaymentMethod(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.clock, f.log)
	user := f.seedUser(t, "omar@example.com")

	res, err := svc.UpdatePaymentMethod(context.Background(), user.Id, &dto.UpdatePaymentMethodRequest{CardToken: "  481111-1114-token  "})
	require.NoError(t, err)
	assert.True(t, res.HasPaymentMethod)

	profile, err := svc.GetProfile(context.Background(), user.Id)
	require.NoError(t, err)
	assert.True(t, profile.HasPaymentMethod)

	_, err = svc.UpdatePaymentMethod(context.Background(), uuid.New(), &dto.UpdatePaymentMethodRequest{CardToken: "481111-1114-token"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
