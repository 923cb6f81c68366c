package serverutils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-chat-quota-be/pkg/clock"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtTestSecret = "jwt-test-secret"

func newJwtApp(clk clock.Clock) *fiber.App {
	app := fiber.New()
	app.Get("/me", NewJwtMiddleware(jwtTestSecret, clk), func(ctx *fiber.Ctx) error {
		id, err := UserIDFromContext(ctx)
		if err != nil {
			return ctx.SendStatus(fiber.StatusUnauthorized)
		}
		return ctx.SendString(id.String())
	})
	return app
}

func getWithToken(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestJwtMiddleware_ExpiryFollowsInjectedClock(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(issuedAt)
	app := newJwtApp(clk)

	token, err := GenerateAccessToken(jwtTestSecret, uuid.New(), "ann@example.com", time.Hour, issuedAt)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, getWithToken(t, app, token))

	clk.Advance(59 * time.Minute)
	assert.Equal(t, http.StatusOK, getWithToken(t, app, token))

	clk.Advance(2 * time.Minute)
	assert.Equal(t, http.StatusUnauthorized, getWithToken(t, app, token))
}

func TestJwtMiddleware_RejectsBadTokens(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	app := newJwtApp(clock.NewFixed(now))

	assert.Equal(t, http.StatusUnauthorized, getWithToken(t, app, ""))
	assert.Equal(t, http.StatusUnauthorized, getWithToken(t, app, "garbage"))

	forged, err := GenerateAccessToken("other-secret", uuid.New(), "eve@example.com", time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, getWithToken(t, app, forged))
}
