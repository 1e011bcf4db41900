package modules

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rostsocial/rost/feed"
	"github.com/rostsocial/rost/model"
	"github.com/rostsocial/rost/realtime"
	. "github.com/rostsocial/rost/utils/log"
)

const defaultRefreshConcurrency = 8

type FeedRefresherConfig struct {
	Name string
	// Maximum number of sessions refreshed at the same time, 8 when unset.
	Concurrency int
}

// SignalPusher delivers signals to a viewer's live connections.
type SignalPusher interface {
	PushSignalToUser(signal *model.Signal, viewerID string) error
}

// FeedRefresher refreshes every live session when posts change and tells the
// viewer about transitions they can see.
type FeedRefresher struct {
	Config FeedRefresherConfig

	Sessions *feed.Sessions

	Signals SignalPusher

	EventBus realtime.Bus
}

func NewFeedRefresher(config FeedRefresherConfig, sessions *feed.Sessions, signals SignalPusher, e realtime.Bus) *FeedRefresher {
	return &FeedRefresher{
		Config:   config,
		Sessions: sessions,
		Signals:  signals,
		EventBus: e,
	}
}

// SignalForTransition maps a visible transition to the signal pushed to the
// viewer, nil when there is nothing to tell.
func SignalForTransition(sessionID string, tr feed.Transition) *model.Signal {
	if !tr.Changed() {
		return nil
	}
	switch tr.To {
	case feed.StatePending:
		return model.NewSignal(model.SignalTypeNewPosts, sessionID, tr.NewCount)
	case feed.StateEmpty:
		return model.NewSignal(model.SignalTypeFeedEmpty, sessionID, 0)
	case feed.StateSettled:
		return model.NewSignal(model.SignalTypeFeedSettled, sessionID, 0)
	}
	return nil
}

// RefreshAll refreshes every registered session once and returns when all
// of them are done. A failing session is logged by the session itself and
// keeps its state.
func (f *FeedRefresher) RefreshAll(ctx context.Context) {
	limit := f.Config.Concurrency
	if limit <= 0 {
		limit = defaultRefreshConcurrency
	}
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, s := range f.Sessions.All() {
		s := s
		g.Go(func() error {
			f.refresh(ctx, s)
			return nil
		})
	}
	g.Wait()
}

func (f *FeedRefresher) refresh(ctx context.Context, s *feed.Session) {
	tr, err := s.Refresh(ctx)
	if err != nil {
		return
	}
	signal := SignalForTransition(s.ID(), tr)
	if signal == nil {
		return
	}
	logger := Log.WithFields(logrus.Fields{"session": s.ID(), "viewer": s.Viewer().ID})
	if err := f.Signals.PushSignalToUser(signal, s.Viewer().ID); err != nil {
		logger.Debugf("signal not delivered: %v", err)
	}
	err = realtime.PublishJSON(f.EventBus, realtime.TOPIC_FEED_TRANSITION, realtime.FeedTransition{
		SessionID: s.ID(),
		ViewerID:  s.Viewer().ID,
		From:      tr.From,
		To:        tr.To,
		NewCount:  tr.NewCount,
	})
	if err != nil {
		logger.Errorf("fail to publish feed transition: %v", err)
	}
}

func (f *FeedRefresher) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := f.EventBus.Subscribe(ctx, realtime.TOPIC_POSTS_CHANGED)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()
		f.RefreshAll(ctx)
	}
	return nil
}

func (f *FeedRefresher) Name() string {
	return f.Config.Name
}
