package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const reservationTTL = 30 * time.Second

// keyStore is the subset of *redis.Client the guard relies on.
type keyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdentityGuard reserves account identities while an account is being created,
// so two concurrent requests for the same email or phone number cannot both
// pass the existence check.
// Key format: account:identity:<email|phone>:<value>
type IdentityGuard struct {
	client keyStore
	ttl    time.Duration
}

// NewIdentityGuard creates an IdentityGuard wrapping the given Redis client.
func NewIdentityGuard(client *redis.Client) *IdentityGuard {
	return newIdentityGuard(client)
}

func newIdentityGuard(client keyStore) *IdentityGuard {
	return &IdentityGuard{client: client, ttl: reservationTTL}
}

// Reserve claims every non-empty identity. It reports false, holding nothing,
// when any of them is already claimed by another request.
func (g *IdentityGuard) Reserve(ctx context.Context, email, phoneNumber string) (bool, error) {
	keys := identityKeys(email, phoneNumber)
	taken := make([]string, 0, len(keys))

	for _, key := range keys {
		ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
		if err != nil {
			g.drop(ctx, taken)
			return false, fmt.Errorf("identity reserve: %w", err)
		}
		if !ok {
			g.drop(ctx, taken)
			return false, nil
		}
		taken = append(taken, key)
	}
	return true, nil
}

// Release frees the reservations taken by Reserve. Unreleased keys expire
// after the reservation TTL.
func (g *IdentityGuard) Release(ctx context.Context, email, phoneNumber string) error {
	keys := identityKeys(email, phoneNumber)
	if len(keys) == 0 {
		return nil
	}
	if err := g.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("identity release: %w", err)
	}
	return nil
}

func (g *IdentityGuard) drop(ctx context.Context, keys []string) {
	if len(keys) > 0 {
		_ = g.client.Del(ctx, keys...).Err()
	}
}

func identityKeys(email, phoneNumber string) []string {
	keys := make([]string, 0, 2)
	if email != "" {
		keys = append(keys, "account:identity:email:"+email)
	}
	if phoneNumber != "" {
		keys = append(keys, "account:identity:phone:"+phoneNumber)
	}
	return keys
}
