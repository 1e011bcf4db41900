package feed

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rostsocial/rost/model"
	. "github.com/rostsocial/rost/utils/log"
)

const (
	DefaultFeedLimit = 30
)

// Viewer is the identity a feed is computed for. An empty ID is an anonymous
// reader, who gets no personalization.
type Viewer struct {
	ID string
}

func (v Viewer) Anonymous() bool {
	return v.ID == ""
}

// PostQuery is what a session asks the backend for. Results are most recent
// first and bounded by Limit.
type PostQuery struct {
	Limit    int
	Category string
	Tag      string
	Search   string
}

type PostSource interface {
	ListPosts(ctx context.Context, q PostQuery) ([]*model.Post, error)
}

type FollowGraph interface {
	FollowingIDs(ctx context.Context, viewerID string) ([]string, error)
}

type EngagementSource interface {
	// Engagement returns like counts for postIDs and, when viewerID is not
	// empty, which of them the viewer liked.
	Engagement(ctx context.Context, postIDs []string, viewerID string) (*model.Engagement, error)
}

// Backend bundles the external collaborators of a session.
type Backend struct {
	Posts      PostSource
	Follows    FollowGraph
	Engagement EngagementSource
}

// View is what a session hands to presentation. LivePosts is the size of the
// latest fetch, shown or not.
type View struct {
	SessionID     string    `json:"sessionId,omitempty"`
	State         StateKind `json:"state"`
	Anchor        time.Time `json:"anchor"`
	NewPostsCount int       `json:"newPostsCount"`
	LivePosts     int       `json:"livePosts"`
	Filter        Filter    `json:"filter"`
	Posts         []Ranked  `json:"posts"`
}

// Session is one viewer's live feed. It owns a reconciler and computes ranked
// views of the displayed snapshot.
type Session struct {
	id      string
	viewer  Viewer
	backend Backend
	ranker  *Ranker
	limit   int

	reconciler *Reconciler
	// done is closed once a registered session is closed or expires, nil for
	// sessions that were never registered.
	done <-chan struct{}

	mu     sync.RWMutex
	filter Filter
}

func NewSession(id string, viewer Viewer, backend Backend, ranker *Ranker, limit int) *Session {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return &Session{
		id:         id,
		viewer:     viewer,
		backend:    backend,
		ranker:     ranker,
		limit:      limit,
		reconciler: NewReconciler(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Viewer() Viewer { return s.viewer }

func (s *Session) Reconciler() *Reconciler { return s.reconciler }

// Done is closed when the session is closed or expires. Ephemeral sessions
// return nil.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Refresh fetches the latest posts and routes them through the reconciler.
// On failure the displayed state is kept and the error is returned, retrying
// is up to the caller.
func (s *Session) Refresh(ctx context.Context) (Transition, error) {
	ticket := s.reconciler.Begin()
	posts, err := s.backend.Posts.ListPosts(ctx, PostQuery{Limit: s.limit})
	if err != nil {
		Log.WithFields(logrus.Fields{"session": s.id, "viewer": s.viewer.ID}).
			Errorf("live posts fetch failed: %v", err)
		return s.reconciler.Fail(ticket), errors.Wrap(err, "fetch posts")
	}
	return s.reconciler.Apply(ticket, posts), nil
}

// ShowLatest swaps in the held snapshot, if any.
func (s *Session) ShowLatest() Transition {
	return s.reconciler.ShowLatest()
}

// SetFilter changes the filter. A held snapshot is merged in, since the
// viewer is about to see a different list anyway.
func (s *Session) SetFilter(f Filter) Transition {
	s.mu.Lock()
	changed := !s.filter.Equal(f)
	s.filter = f
	s.mu.Unlock()

	if !changed {
		k := s.reconciler.State().Kind()
		return Transition{From: k, To: k}
	}
	return s.reconciler.ShowLatest()
}

// View filters and ranks the displayed snapshot for the viewer. Signal lookups
// that fail degrade to zero signals.
func (s *Session) View(ctx context.Context) (*View, error) {
	state := s.reconciler.State()
	filter := s.Filter()

	view := &View{
		SessionID: s.id,
		State:     state.Kind(),
		Anchor:    state.Displayed().Anchor(),
		Filter:    filter,
		LivePosts: len(s.reconciler.Live()),
		Posts:     []Ranked{},
	}
	if p, ok := state.(Pending); ok {
		view.NewPostsCount = p.NewCount()
	}

	displayed := state.Displayed().Posts()
	if len(displayed) == 0 {
		return view, nil
	}

	visible := filter.Apply(displayed)
	if len(visible) == 0 {
		return view, nil
	}

	signals := s.loadSignals(ctx, displayed)
	view.Posts = s.ranker.RankScored(visible, signals)
	return view, nil
}

func (s *Session) loadSignals(ctx context.Context, displayed []*model.Post) Signals {
	signals := Signals{}
	logger := Log.WithFields(logrus.Fields{"session": s.id, "viewer": s.viewer.ID})

	if !s.viewer.Anonymous() && s.backend.Follows != nil {
		ids, err := s.backend.Follows.FollowingIDs(ctx, s.viewer.ID)
		if err != nil {
			logger.Warnf("loading following ids failed: %v", err)
		} else {
			signals.FollowedAuthors = make(map[string]bool, len(ids))
			for _, id := range ids {
				signals.FollowedAuthors[id] = true
			}
		}
	}

	if s.backend.Engagement != nil {
		ids := make([]string, len(displayed))
		for i, p := range displayed {
			ids[i] = p.Id
		}
		e, err := s.backend.Engagement.Engagement(ctx, ids, s.viewer.ID)
		if err != nil {
			logger.Warnf("loading engagement failed: %v", err)
		} else if e != nil {
			signals.LikeCounts = e.LikeCounts
			signals.LikedPosts = e.Liked
		}
	}

	// Preferred tags come from the whole displayed snapshot, not only the
	// filtered part, so narrowing a filter doesn't change the boost.
	signals.PreferredTags = PreferredTags(displayed, signals.LikedPosts)
	return signals
}
