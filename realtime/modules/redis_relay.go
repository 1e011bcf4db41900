package modules

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/rostsocial/rost/realtime"
	. "github.com/rostsocial/rost/utils/log"
)

type RedisRelayConfig struct {
	Name string
	// Redis pub/sub channel post changes are published to.
	Channel string
}

// RedisRelay subscribes the Redis channel every instance publishes post
// changes to and republishes them on the local bus.
type RedisRelay struct {
	Config RedisRelayConfig

	Client *redis.Client

	EventBus message.Publisher
}

func NewRedisRelay(config RedisRelayConfig, client *redis.Client, e message.Publisher) *RedisRelay {
	return &RedisRelay{
		Config:   config,
		Client:   client,
		EventBus: e,
	}
}

func (r *RedisRelay) RunModule(ctx context.Context) error {
	sub := r.Client.Subscribe(ctx, r.Config.Channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before consuming.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "subscribe "+r.Config.Channel)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			r.relay(msg.Payload)
		}
	}
}

func (r *RedisRelay) relay(payload string) {
	change := realtime.PostsChanged{}
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		// Any message on the channel still means something changed.
		Log.Warnf("%s unreadable payload %q: %v", r.Name(), payload, err)
		change = realtime.PostsChanged{}
	}
	change.Source = realtime.SourceRedis
	if err := realtime.PublishJSON(r.EventBus, realtime.TOPIC_POSTS_CHANGED, change); err != nil {
		Log.Errorf("%s fail to publish posts change: %v", r.Name(), err)
	}
}

func (r *RedisRelay) Name() string {
	return r.Config.Name
}
