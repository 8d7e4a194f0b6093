// Package broker relays forum events between server instances over redis
// pub/sub so every instance's websocket clients see mutations made through
// any of them.
package broker

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"folio/pkg/envelope"
)

// EventsChannel carries every forum mutation event.
const EventsChannel = "folio.forum.events"

type HandlerFunc func(envelope.Envelope)

type Broker struct {
	rdb    *redis.Client
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Broker {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatal("[BROKER] invalid redis url:", err)
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithCancel(context.Background())

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("[BROKER] redis ping failed:", err)
	}

	return &Broker{rdb: rdb, ctx: ctx, cancel: cancel}
}

// Publish sends an event envelope to every subscribed instance, including
// this one.
func (b *Broker) Publish(channel string, env envelope.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return err
	}
	return b.rdb.Publish(b.ctx, channel, data).Err()
}

// PublishEvent builds and publishes an event envelope on the forum channel.
func (b *Broker) PublishEvent(action string, data interface{}) {
	env, err := envelope.NewEvent(action, "forum", data)
	if err != nil {
		return
	}
	if err := b.Publish(EventsChannel, env); err != nil {
		log.Printf("[BROKER] publish %s: %v", action, err)
	}
}

// Subscribe starts a background reader on the given channels and hands
// every decoded envelope to fn.
func (b *Broker) Subscribe(fn HandlerFunc, channels ...string) {
	sub := b.rdb.Subscribe(b.ctx, channels...)
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-b.ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				env, err := envelope.Unmarshal([]byte(msg.Payload))
				if err != nil {
					continue
				}
				fn(env)
			}
		}
	}()
}

func (b *Broker) Close() {
	b.cancel()
	b.rdb.Close()
}
