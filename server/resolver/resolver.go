package resolver

import (
	"context"
	"errors"

	"gorm.io/gorm"

	. "github.com/rostsocial/rost/utils/log"
)

const (
	postsListLimit     = 30
	profileSearchLimit = 8
	minProfileQueryLen = 2
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("sign in required")
)

// PostsNotifier is told about every write that changes the posts collection,
// so that live feeds on every instance can refresh.
type PostsNotifier interface {
	NotifyPostsChanged(ctx context.Context, op string) error
}

// It serves as dependency injection for your app, add any dependencies you require here.

type Resolver struct {
	DB          *gorm.DB
	SignalChans *SignalChannels
	Notifier    PostsNotifier
}

func (r *Resolver) notifyPostsChanged(ctx context.Context, op string) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.NotifyPostsChanged(ctx, op); err != nil {
		Log.Errorf("fail to notify posts change %s: %v", op, err)
	}
}

func requireViewer(viewerID string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	return nil
}
