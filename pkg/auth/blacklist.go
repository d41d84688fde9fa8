package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cartbridge/partnerhub/pkg/cache"
)

const blacklistKeyPrefix = "jwt_blacklist:"

// TokenBlacklist tracks revoked JWT tokens in Redis. Entries expire together
// with the token itself, so the set stays bounded.
type TokenBlacklist struct {
	cache *cache.Client
}

// NewTokenBlacklist creates a new token blacklist
func NewTokenBlacklist(cache *cache.Client) *TokenBlacklist {
	return &TokenBlacklist{cache: cache}
}

// Revoke adds a token to the blacklist until its natural expiry
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired, nothing to revoke
		return nil
	}
	return b.cache.Set(ctx, blacklistKeyPrefix+hashToken(token), "revoked", ttl)
}

// IsBlacklisted checks whether a token has been revoked
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	_, err := b.cache.Get(ctx, blacklistKeyPrefix+hashToken(token))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// hashToken keeps raw JWTs out of Redis
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
