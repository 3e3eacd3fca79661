// Package redis backs the cache and pub/sub interfaces with a Redis server.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// delIfValue removes KEYS[1] only when it still holds ARGV[1].
var delIfValue = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const (
	pingTimeout   = 5 * time.Second
	subscriberBuf = 256
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Client serves both key/value and pub/sub traffic from one connection pool.
type Client struct {
	rdb *goredis.Client
}

// New connects to Redis and verifies the server answers PING.
func New(ctx context.Context, cfg Config) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return &Client{rdb: rdb}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error { return c.rdb.Close() }

func (c *Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) DelIfValue(ctx context.Context, key, value string) (bool, error) {
	n, err := delIfValue.Run(ctx, c.rdb, []string{key}, value).Int64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Message is one received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

func (c *Client) Publish(ctx context.Context, channel, message string) error {
	return c.rdb.Publish(ctx, channel, message).Err()
}

// Subscribe returns once the server has confirmed the subscription, so
// anything published afterwards is delivered. The stream ends when cancel
// is called or ctx is done.
func (c *Client) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	ps := c.rdb.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis: subscribe: %w", err)
	}

	var once sync.Once
	cancel := func() { once.Do(func() { _ = ps.Close() }) }

	out := make(chan *Message, subscriberBuf)
	go func() {
		defer close(out)
		in := ps.Channel()
		for {
			select {
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- &Message{Channel: msg.Channel, Payload: msg.Payload}:
				case <-ctx.Done():
					cancel()
					return
				}
			case <-ctx.Done():
				cancel()
				return
			}
		}
	}()
	return out, cancel, nil
}
