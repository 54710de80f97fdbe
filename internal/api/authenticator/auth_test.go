package authenticator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mosaicboards/mosaic/internal/authz"
	"github.com/mosaicboards/mosaic/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()

	a, err := New(&config.Config{JWT_SECRET: "test-secret"})
	require.NoError(t, err)
	return a
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(&config.Config{})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	a := newTestAuthenticator(t)
	userID := uuid.New()

	token, err := a.GenerateToken(userID, "ada@example.com", "Ada", "ADMIN")
	require.NoError(t, err)

	claims, err := a.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ADMIN", claims.Role)

	actor := claims.Actor()
	assert.Equal(t, userID, actor.UserID)
	assert.Equal(t, authz.RoleAdmin, actor.Role)
	assert.True(t, actor.IsAdmin())
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a := newTestAuthenticator(t)

	other, err := New(&config.Config{JWT_SECRET: "other-secret"})
	require.NoError(t, err)

	token, err := other.GenerateToken(uuid.New(), "ada@example.com", "Ada", "USER")
	require.NoError(t, err)

	_, err = a.VerifyAccessToken(context.Background(), token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	a := newTestAuthenticator(t)

	_, err := a.VerifyAccessToken(context.Background(), "not.a.token")
	assert.Error(t, err)
}

func TestOIDCDisabledWithoutIssuer(t *testing.T) {
	a := newTestAuthenticator(t)

	assert.False(t, a.OIDCEnabled())
	assert.Error(t, a.VerifyProviderToken(context.Background(), "anything"))
}

func TestSignedStateRoundTrip(t *testing.T) {
	a := newTestAuthenticator(t)
	a.stateSecret = "state-secret"

	state := OAuthState{
		CSRF:      "csrf-token",
		Redirect:  "http://localhost:3000",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}

	encoded, err := a.GetSignedState(state)
	require.NoError(t, err)

	decoded, err := a.VerifySignedState(encoded)
	require.NoError(t, err)
	assert.Equal(t, state.CSRF, decoded.CSRF)
	assert.Equal(t, state.Redirect, decoded.Redirect)
}

func TestSignedStateRejectsTampering(t *testing.T) {
	a := newTestAuthenticator(t)
	a.stateSecret = "state-secret"

	encoded, err := a.GetSignedState(OAuthState{
		CSRF:      "csrf-token",
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	_, err = a.VerifySignedState("A" + encoded[1:])
	assert.Error(t, err)

	_, err = a.VerifySignedState("%%%not-base64%%%")
	assert.Error(t, err)
}

func TestSignedStateRejectsExpired(t *testing.T) {
	a := newTestAuthenticator(t)
	a.stateSecret = "state-secret"

	encoded, err := a.GetSignedState(OAuthState{
		CSRF:      "csrf-token",
		IssuedAt:  time.Now().Add(-10 * time.Minute).Unix(),
		ExpiresAt: time.Now().Add(-5 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	_, err = a.VerifySignedState(encoded)
	assert.Error(t, err)
}
