package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "5000")
	t.Setenv("BILLING_AUTHORIZER", "random")

	cfg := Load()

	assert.Equal(t, "5000", cfg.App.Port)
	assert.Equal(t, "random", cfg.Billing.Authorizer)
	assert.Equal(t, time.Hour, cfg.Billing.RenewalInterval)
	assert.InDelta(t, 0.1, cfg.Billing.FailureRate, 1e-9)
	assert.Equal(t, 200*time.Millisecond, cfg.MockAI.MinDelay)
	assert.Equal(t, 500, cfg.MockAI.MaxTokens)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RENEWAL_INTERVAL", "15m")
	t.Setenv("BILLING_FAILURE_RATE", "0.25")
	t.Setenv("MIDTRANS_IS_PRODUCTION", "true")
	t.Setenv("MOCK_OPENAI_MAX_DELAY_MS", "10")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.Billing.RenewalInterval)
	assert.InDelta(t, 0.25, cfg.Billing.FailureRate, 1e-9)
	assert.True(t, cfg.Billing.MidtransIsProd)
	assert.Equal(t, 10*time.Millisecond, cfg.MockAI.MaxDelay)
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_DURATION", "not-a-duration")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}
