package modules

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/rostsocial/rost/realtime"
	. "github.com/rostsocial/rost/utils/log"
)

const (
	pgMinReconnectInterval = 10 * time.Second
	pgMaxReconnectInterval = time.Minute
	pgPingInterval         = 90 * time.Second
)

type PGListenerConfig struct {
	Name string
	// libpq connection string of the database to LISTEN on.
	ConnString string
	// Channel notified by the posts trigger.
	Channel string
}

// PGListener turns Postgres notifications on Channel into
// TOPIC_POSTS_CHANGED events.
type PGListener struct {
	Config PGListenerConfig

	EventBus message.Publisher
}

func NewPGListener(config PGListenerConfig, e message.Publisher) *PGListener {
	return &PGListener{
		Config:   config,
		EventBus: e,
	}
}

// ParseNotification decodes the "<table>:<op>" payload sent by the trigger.
func ParseNotification(extra string) realtime.PostsChanged {
	change := realtime.PostsChanged{Source: realtime.SourcePostgres}
	if idx := strings.Index(extra, ":"); idx >= 0 {
		change.Table = extra[:idx]
		change.Op = extra[idx+1:]
	} else {
		change.Op = extra
	}
	return change
}

func (l *PGListener) RunModule(ctx context.Context) error {
	listener := pq.NewListener(
		l.Config.ConnString,
		pgMinReconnectInterval,
		pgMaxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				Log.Errorf("%s listener event %d: %v", l.Name(), ev, err)
			}
		},
	)
	defer listener.Close()

	if err := listener.Listen(l.Config.Channel); err != nil {
		return errors.Wrap(err, "listen "+l.Config.Channel)
	}
	Log.Infof("%s listening on %s", l.Name(), l.Config.Channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			change := realtime.PostsChanged{Source: realtime.SourcePostgres, Op: realtime.OpReconnect}
			// A nil notification means the connection was re-established.
			if n != nil {
				change = ParseNotification(n.Extra)
			}
			if err := realtime.PublishJSON(l.EventBus, realtime.TOPIC_POSTS_CHANGED, change); err != nil {
				Log.Errorf("%s fail to publish posts change: %v", l.Name(), err)
			}
		case <-time.After(pgPingInterval):
			go func() {
				if err := listener.Ping(); err != nil {
					Log.Warnf("%s ping failed: %v", l.Name(), err)
				}
			}()
		}
	}
}

func (l *PGListener) Name() string {
	return l.Config.Name
}
