package realtime

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/rostsocial/rost/feed"
)

const (
	// Something changed in the posts collection. No payload guarantees, it may
	// be duplicated or arrive while a refresh is in flight.
	TOPIC_POSTS_CHANGED = "posts.changed"
	// A live session went through a visible transition.
	TOPIC_FEED_TRANSITION = "feed.transition"

	DDOG_FEED_TRANSITION_COUNTER = "rost.feed.transition"
	DDOG_POSTS_CHANGED_COUNTER   = "rost.posts.changed"
)

const (
	SourceLocal    = "local"
	SourcePostgres = "postgres"
	SourceRedis    = "redis"

	// OpReconnect is published after a listener reconnects, since changes may
	// have been missed in between.
	OpReconnect = "RECONNECT"
)

// PostsChanged is the payload of TOPIC_POSTS_CHANGED.
type PostsChanged struct {
	Source string `json:"source"`
	Table  string `json:"table,omitempty"`
	Op     string `json:"op"`
}

// FeedTransition is the payload of TOPIC_FEED_TRANSITION.
type FeedTransition struct {
	SessionID string         `json:"sessionId"`
	ViewerID  string         `json:"viewerId"`
	From      feed.StateKind `json:"from"`
	To        feed.StateKind `json:"to"`
	NewCount  int            `json:"newCount"`
}

// Bus is what modules publish to and subscribe from, satisfied by the
// in-process gochannel bus.
type Bus interface {
	message.Publisher
	message.Subscriber
}

// NewBus creates the in-process event bus shared by all modules.
func NewBus(buffer int64) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            buffer,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)
}

// PublishJSON marshals payload and publishes it on topic.
func PublishJSON(bus message.Publisher, topic string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return bus.Publish(topic, message.NewMessage(watermill.NewUUID(), b))
}
