package modules

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/rostsocial/rost/realtime"
	. "github.com/rostsocial/rost/utils/log"
)

type ReporterConfig struct {
	Name string
}

// Counter is the part of the DogStatsD client the reporter needs.
type Counter interface {
	Incr(name string, tags []string, rate float64) error
}

// Reporter's job is to listen to different channels and aggregate results,
// sending to Datadog (Or other service if there's any) for monitoring purpose.
type Reporter struct {
	Config ReporterConfig

	Statsd Counter

	EventBus message.Subscriber
}

func NewReporter(config ReporterConfig, statsd Counter, e message.Subscriber) *Reporter {
	return &Reporter{
		Config:   config,
		Statsd:   statsd,
		EventBus: e,
	}
}

// ReportFeedTransition reports one transition to datadog.
func ReportFeedTransition(tr *realtime.FeedTransition, statsd Counter) {
	err := statsd.Incr(realtime.DDOG_FEED_TRANSITION_COUNTER,
		[]string{
			"from:" + tr.From.String(),
			"to:" + tr.To.String(),
		}, 1)
	if err != nil {
		Log.Infoln("cannot report feed transition")
	}
}

// ReportPostsChanged reports one posts change to datadog.
func ReportPostsChanged(change *realtime.PostsChanged, statsd Counter) {
	err := statsd.Incr(realtime.DDOG_POSTS_CHANGED_COUNTER,
		[]string{
			"source:" + change.Source,
			"op:" + change.Op,
		}, 1)
	if err != nil {
		Log.Infoln("cannot report posts change")
	}
}

func (r *Reporter) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	transitions, err := r.EventBus.Subscribe(ctx, realtime.TOPIC_FEED_TRANSITION)
	if err != nil {
		return err
	}
	changes, err := r.EventBus.Subscribe(ctx, realtime.TOPIC_POSTS_CHANGED)
	if err != nil {
		return err
	}

	for {
		select {
		case msg, ok := <-transitions:
			if !ok {
				return nil
			}
			msg.Ack()
			tr := realtime.FeedTransition{}
			if err := json.Unmarshal(msg.Payload, &tr); err != nil {
				Log.Warnf("%s unreadable feed transition: %v", r.Name(), err)
				continue
			}
			ReportFeedTransition(&tr, r.Statsd)
		case msg, ok := <-changes:
			if !ok {
				return nil
			}
			msg.Ack()
			change := realtime.PostsChanged{}
			if err := json.Unmarshal(msg.Payload, &change); err != nil {
				Log.Warnf("%s unreadable posts change: %v", r.Name(), err)
				continue
			}
			ReportPostsChanged(&change, r.Statsd)
		}
	}
}

func (r *Reporter) Name() string {
	return r.Config.Name
}
