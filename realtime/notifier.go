package realtime

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Notifier tells live feeds that posts changed. With Redis configured the
// change is fanned out to every instance through the relay channel, otherwise
// it goes straight onto the local bus.
type Notifier struct {
	redis   *redis.Client
	channel string
	bus     message.Publisher
}

// NewNotifier builds a notifier, client may be nil.
func NewNotifier(client *redis.Client, channel string, bus message.Publisher) *Notifier {
	return &Notifier{
		redis:   client,
		channel: channel,
		bus:     bus,
	}
}

func (n *Notifier) NotifyPostsChanged(ctx context.Context, op string) error {
	if n.redis == nil {
		return errors.Wrap(
			PublishJSON(n.bus, TOPIC_POSTS_CHANGED, PostsChanged{Source: SourceLocal, Table: "posts", Op: op}),
			"publish posts change")
	}

	b, err := json.Marshal(PostsChanged{Source: SourceRedis, Table: "posts", Op: op})
	if err != nil {
		return err
	}
	return errors.Wrap(n.redis.Publish(ctx, n.channel, b).Err(), "redis publish posts change")
}
