// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"venuebook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (venue capacity cache).
	CacheClient *redis.Client
	// OTPCacheClient holds verification codes.
	OTPCacheClient *redis.Client
)

func newRedisClient(db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (db %d): %w", db, err)
	}
	return client, nil
}

// InitRedis connects the cache and OTP clients using AppConfig.
func InitRedis() error {
	var err error
	if CacheClient, err = newRedisClient(config.AppConfig.RedisCacheDB); err != nil {
		return err
	}
	if OTPCacheClient, err = newRedisClient(config.AppConfig.RedisOTPDB); err != nil {
		return err
	}
	return nil
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	return CacheClient
}

// GetOTPCacheClient returns the Redis client for verification codes.
func GetOTPCacheClient() *redis.Client {
	return OTPCacheClient
}

// RedisClients lists every initialized client, for health checks and shutdown.
func RedisClients() []*redis.Client {
	var out []*redis.Client
	for _, c := range []*redis.Client{CacheClient, OTPCacheClient} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// CloseRedis closes every initialized client.
func CloseRedis() {
	for _, c := range RedisClients() {
		if err := c.Close(); err != nil {
			GetLogger().Sugar().Warnf("Error closing Redis connection: %v", err)
		}
	}
}
