package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/config"
)

const redisDialTimeout = 3 * time.Second

// Redis holds the client behind the realtime change feed.
type Redis struct {
	Client *redis.Client
}

// RedisOptions builds client options. Addr may be host:port or a
// redis:// / rediss:// URL; explicit password and db settings win over the
// URL's.
func RedisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	if strings.Contains(cfg.Addr, "://") {
		parsed, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.Addr}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	opts.DialTimeout = redisDialTimeout
	return opts, nil
}

// NewRedis creates the client. An unreachable server is logged, not fatal:
// the portal keeps serving without live updates and readiness reports it.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	opts, err := RedisOptions(cfg)
	if err != nil {
		logger.Warn("invalid redis configuration; realtime disabled", zap.Error(err))
		return &Redis{}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable; realtime updates paused until it recovers", zap.String("addr", opts.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	}
	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
