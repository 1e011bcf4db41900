package resolver

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm/clause"

	"github.com/rostsocial/rost/model"
)

// Follow makes viewerID follow userID. Following twice is a no-op.
func (r *Resolver) Follow(ctx context.Context, userID string, viewerID string) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}
	if userID == "" || userID == viewerID {
		return errors.Wrap(ErrInvalidInput, "cannot follow yourself")
	}

	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.Profile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return errors.Wrap(err, "follow")
	}
	if count == 0 {
		return ErrNotFound
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Follow{FollowerID: viewerID, FollowingID: userID}).Error
	return errors.Wrap(err, "follow")
}

// Unfollow removes the follow edge, if any.
func (r *Resolver) Unfollow(ctx context.Context, userID string, viewerID string) error {
	if err := requireViewer(viewerID); err != nil {
		return err
	}
	err := r.DB.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", viewerID, userID).
		Delete(&model.Follow{}).Error
	return errors.Wrap(err, "unfollow")
}
