package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Config describes the Redis instance that backs the identity guard. Addr is
// either host:port or a redis:// / rediss:// URL; a URL's credentials and
// database win over Password and DB.
type Config struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

func (c Config) options() (*redis.Options, error) {
	addr := strings.TrimSpace(c.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis: empty address")
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("redis: parse url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr, Password: c.Password, DB: c.DB}
	}

	if c.Timeout > 0 {
		opts.DialTimeout = c.Timeout
		opts.ReadTimeout = c.Timeout
		opts.WriteTimeout = c.Timeout
	}
	return opts, nil
}

// Connect opens a client and pings it once. The client is closed again when
// the ping fails, so callers only own it on success.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	wait := cfg.Timeout
	if wait <= 0 {
		wait = pingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}
