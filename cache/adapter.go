package cache

import (
	"context"
	"time"

	"github.com/kasuganosora/questservice/cache/local"
	cacheredis "github.com/kasuganosora/questservice/cache/redis"
	"github.com/kasuganosora/questservice/config"
)

// Cache holds the short-lived keys behind the generation lock.
type Cache interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	// DelIfValue deletes key only while it still holds value.
	DelIfValue(ctx context.Context, key, value string) (bool, error)
}

// Message is a received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

// PubSub defines channel publish/subscribe operations.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
}

// Store bundles the Cache and PubSub built from one configuration.
type Store struct {
	Cache  Cache
	PubSub PubSub
	close  func() error
}

// Close releases the backing connection or background goroutines.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open returns a Redis-backed Store when cfg.RedisAddr is set. Cache and
// PubSub then share one connection pool. Without an address both run
// in-process, which only suits a single replica.
func Open(ctx context.Context, cfg config.CacheConfig) (*Store, error) {
	if cfg.RedisAddr != "" {
		client, err := cacheredis.New(ctx, cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return &Store{
			Cache:  client,
			PubSub: &redisPubSubAdapter{ps: client},
			close:  client.Close,
		}, nil
	}

	lc, err := local.NewCache(local.Config{GCInterval: cfg.LocalGCInterval})
	if err != nil {
		return nil, err
	}
	return &Store{
		Cache:  lc,
		PubSub: &localPubSubAdapter{ps: local.NewPubSub(cfg.LocalPubSubBuf)},
		close: func() error {
			lc.Close()
			return nil
		},
	}, nil
}

// The sub-packages cannot import this one, so their message types are
// converted here.

type localPubSubAdapter struct {
	ps *local.LocalPubSub
}

func (a *localPubSubAdapter) Publish(ctx context.Context, channel, message string) error {
	return a.ps.Publish(ctx, channel, message)
}

func (a *localPubSubAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	in, cancel, err := a.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return forward(in, func(m *local.LocalMessage) *Message {
		return &Message{Channel: m.Channel, Payload: m.Payload}
	}), cancel, nil
}

type redisPubSubAdapter struct {
	ps *cacheredis.Client
}

func (a *redisPubSubAdapter) Publish(ctx context.Context, channel, message string) error {
	return a.ps.Publish(ctx, channel, message)
}

func (a *redisPubSubAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	in, cancel, err := a.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return forward(in, func(m *cacheredis.Message) *Message {
		return &Message{Channel: m.Channel, Payload: m.Payload}
	}), cancel, nil
}

// forward converts messages until in is closed. A message that finds out
// full is dropped, so an abandoned reader never pins the goroutine.
func forward[T any](in <-chan T, conv func(T) *Message) <-chan *Message {
	out := make(chan *Message, max(cap(in), 1))
	go func() {
		defer close(out)
		for msg := range in {
			select {
			case out <- conv(msg):
			default:
			}
		}
	}()
	return out
}
