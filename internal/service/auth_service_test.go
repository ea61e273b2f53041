package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"alcyxob/workout-tracker/internal/config"
)

func newTestAuth(t *testing.T) AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.AuthConfig{Username: "admin", PasswordHash: string(hash)}, "test-secret", time.Hour)
}

func TestLoginIssuesToken(t *testing.T) {
	auth := newTestAuth(t)

	token, expiresAt, err := auth.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(auth.GetJWTSecret()), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	require.Equal(t, "admin", claims.Username)
	require.Equal(t, TokenIssuer, claims.Issuer)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newTestAuth(t)

	_, _, err := auth.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = auth.Login(context.Background(), "someone", "s3cret")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = auth.Login(context.Background(), "", "")
	require.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))

	_, err = HashPassword("")
	require.Error(t, err)
}
