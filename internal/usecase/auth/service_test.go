package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hytalepanel/internal/domain"
)

func newTestService(t *testing.T, expiry time.Duration) *Service {
	t.Helper()
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	return NewService(Config{
		Username:     "admin",
		PasswordHash: hash,
		TokenSecret:  []byte("test-signing-secret"),
		TokenExpiry:  expiry,
	}, zerowrap.New(zerowrap.Config{Level: "warn"}))
}

func TestService_IsEnabled(t *testing.T) {
	assert.True(t, newTestService(t, 0).IsEnabled())

	open := NewService(Config{}, zerowrap.New(zerowrap.Config{Level: "warn"}))
	assert.False(t, open.IsEnabled())
}

func TestService_ValidatePassword(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	assert.True(t, svc.ValidatePassword(ctx, "admin", "secret"))
	assert.False(t, svc.ValidatePassword(ctx, "admin", "wrong"))
	assert.False(t, svc.ValidatePassword(ctx, "other", "secret"))
}

func TestService_IssueAndValidateToken(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	token, err := svc.IssueToken(ctx, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestService_ValidateToken_Rejections(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin",
			"iss": TokenIssuer,
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := forged.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, signed)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin",
			"iss": "someone-else",
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		signed, err := forged.SignedString([]byte("test-signing-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, signed)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin",
			"iss": TokenIssuer,
			"iat": time.Now().Add(-2 * time.Hour).Unix(),
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		signed, err := expired.SignedString([]byte("test-signing-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, signed)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
