package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Config describes the shared redis instance backing the ephemeral stores.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Client wraps the redis connection used by the rate-limit, OTP, session and
// idempotency stores when the service runs with shared state.
type Client struct {
	redisClient *redis.Client
}

// NewClient connects to redis and verifies the connection with a ping.
func NewClient(config Config, log *logrus.Logger) (*Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithFields(logrus.Fields{
			"addr":  config.Addr,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.WithField("addr", config.Addr).Info("redis connected successfully")

	return &Client{redisClient: redisClient}, nil
}

// RedisClient exposes the underlying connection for store implementations.
func (c *Client) RedisClient() *redis.Client {
	return c.redisClient
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.redisClient.Close()
}
