package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartbridge/partnerhub/pkg/cache"
	"github.com/cartbridge/partnerhub/pkg/domain"
)

const testSecret = "test-secret"

func testPartner() *domain.Partner {
	return &domain.Partner{
		ID:    42,
		Email: "priya@acme.dev",
		Kind:  domain.KindReferral,
		Role:  domain.RolePartner,
	}
}

func TestGenerateAndValidateJWT(t *testing.T) {
	t.Run("Success - Round trip preserves claims", func(t *testing.T) {
		token, err := GenerateJWT(testPartner(), testSecret, 24)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := ValidateJWT(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.PartnerID)
		assert.Equal(t, "priya@acme.dev", claims.Email)
		assert.Equal(t, domain.KindReferral, claims.Kind)
		assert.Equal(t, domain.RolePartner, claims.Role)
	})

	t.Run("Failure - Wrong secret rejected", func(t *testing.T) {
		token, err := GenerateJWT(testPartner(), testSecret, 24)
		require.NoError(t, err)

		_, err = ValidateJWT(token, "other-secret")
		require.Error(t, err)
	})

	t.Run("Failure - Expired token rejected", func(t *testing.T) {
		token, err := GenerateJWT(testPartner(), testSecret, -1)
		require.NoError(t, err)

		_, err = ValidateJWT(token, testSecret)
		require.Error(t, err)
	})

	t.Run("Failure - Garbage token rejected", func(t *testing.T) {
		_, err := ValidateJWT("not-a-jwt", testSecret)
		require.Error(t, err)
	})
}

func TestTokenBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	cacheClient := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { cacheClient.Close() })

	blacklist := NewTokenBlacklist(cacheClient)
	ctx := context.Background()

	t.Run("Success - Revoked token fails validation", func(t *testing.T) {
		token, err := GenerateJWT(testPartner(), testSecret, 24)
		require.NoError(t, err)

		// Valid before revocation
		_, err = ValidateJWTWithBlacklist(ctx, token, testSecret, blacklist)
		require.NoError(t, err)

		require.NoError(t, blacklist.Revoke(ctx, token, time.Now().Add(24*time.Hour)))

		_, err = ValidateJWTWithBlacklist(ctx, token, testSecret, blacklist)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "revoked")
	})

	t.Run("Success - Unrevoked token passes", func(t *testing.T) {
		token, err := GenerateJWT(testPartner(), testSecret, 24)
		require.NoError(t, err)

		claims, err := ValidateJWTWithBlacklist(ctx, token, testSecret, blacklist)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.PartnerID)
	})

	t.Run("Success - Revoking one session leaves a same-second login valid", func(t *testing.T) {
		// Two logins for the same partner in the same second must yield
		// distinct tokens, so logging out of one keeps the other alive.
		first, err := GenerateJWT(testPartner(), testSecret, 24)
		require.NoError(t, err)
		second, err := GenerateJWT(testPartner(), testSecret, 24)
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		require.NoError(t, blacklist.Revoke(ctx, first, time.Now().Add(24*time.Hour)))

		_, err = ValidateJWTWithBlacklist(ctx, first, testSecret, blacklist)
		require.Error(t, err)

		claims, err := ValidateJWTWithBlacklist(ctx, second, testSecret, blacklist)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.PartnerID)
	})

	t.Run("Success - Revoking an already-expired token is a no-op", func(t *testing.T) {
		require.NoError(t, blacklist.Revoke(ctx, "stale-token", time.Now().Add(-time.Hour)))

		revoked, err := blacklist.IsBlacklisted(ctx, "stale-token")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Run("Success - Hash verifies and differs from plaintext", func(t *testing.T) {
		hash, err := HashPassword("s3cure-pass")
		require.NoError(t, err)
		assert.NotEqual(t, "s3cure-pass", hash)
		assert.True(t, CheckPassword("s3cure-pass", hash))
	})

	t.Run("Failure - Wrong password rejected", func(t *testing.T) {
		hash, err := HashPassword("s3cure-pass")
		require.NoError(t, err)
		assert.False(t, CheckPassword("wrong-pass", hash))
	})
}
