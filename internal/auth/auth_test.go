package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tilly/internal/auth"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, role auth.Role, expiry time.Duration) string {
	t.Helper()

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
		Name: "Maria",
		Role: role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	return token
}

func TestRole_CanRecordPayments(t *testing.T) {
	assert.True(t, auth.RoleAdmin.CanRecordPayments())
	assert.True(t, auth.RoleManager.CanRecordPayments())
	assert.True(t, auth.RoleAccountant.CanRecordPayments())
	assert.False(t, auth.RoleCashier.CanRecordPayments())
	assert.False(t, auth.Role("intern").CanRecordPayments())
}

func TestParseToken(t *testing.T) {
	actor, err := auth.ParseToken(signToken(t, auth.RoleManager, time.Hour), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u-123", actor.ID)
	assert.Equal(t, "Maria", actor.Name)
	assert.Equal(t, auth.RoleManager, actor.Role)
}

func TestParseToken_Expired(t *testing.T) {
	_, err := auth.ParseToken(signToken(t, auth.RoleManager, -time.Hour), testSecret)
	assert.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	_, err := auth.ParseToken(signToken(t, auth.RoleManager, time.Hour), []byte("other"))
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	var gotActor auth.Actor

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.ContextProvider{}.CurrentActor(r.Context())
		require.NoError(t, err)

		gotActor = actor
		w.WriteHeader(http.StatusOK)
	})

	handler := auth.Middleware(testSecret)(next)

	t.Run("ValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, auth.RoleCashier, time.Hour))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, auth.RoleCashier, gotActor.Role)
	})

	t.Run("MissingToken", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestContextProvider_NoActor(t *testing.T) {
	_, err := auth.ContextProvider{}.CurrentActor(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoActor)
}
