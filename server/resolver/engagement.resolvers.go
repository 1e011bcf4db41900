package resolver

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rostsocial/rost/model"
)

func (r *Resolver) postExists(tx *gorm.DB, postID string) error {
	var count int64
	if err := tx.Model(&model.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleLike likes the post for viewerID, or removes the like if present.
func (r *Resolver) ToggleLike(ctx context.Context, postID string, viewerID string) (*model.LikeState, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}

	state := &model.LikeState{PostID: postID}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.postExists(tx, postID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND post_id = ?", viewerID, postID).Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&model.Like{UserID: viewerID, PostID: postID}).Error; err != nil {
				return err
			}
			state.Liked = true
		}
		return tx.Model(&model.Like{}).Where("post_id = ?", postID).Count(&state.Count).Error
	})
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "toggle like")
	}
	return state, nil
}

// ToggleBookmark saves the post for viewerID, or removes it if saved. Returns
// whether the post is bookmarked afterwards.
func (r *Resolver) ToggleBookmark(ctx context.Context, postID string, viewerID string) (bool, error) {
	if err := requireViewer(viewerID); err != nil {
		return false, err
	}

	saved := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.postExists(tx, postID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND post_id = ?", viewerID, postID).Delete(&model.Bookmark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		saved = true
		return tx.Create(&model.Bookmark{UserID: viewerID, PostID: postID}).Error
	})
	if errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err != nil {
		return false, errors.Wrap(err, "toggle bookmark")
	}
	return saved, nil
}

// Bookmarks returns the posts viewerID saved, most recently saved first.
func (r *Resolver) Bookmarks(ctx context.Context, viewerID string) ([]*model.Post, error) {
	if err := requireViewer(viewerID); err != nil {
		return nil, err
	}
	posts := []*model.Post{}
	err := r.DB.WithContext(ctx).
		Joins("JOIN bookmarks ON bookmarks.post_id = posts.id").
		Where("bookmarks.user_id = ?", viewerID).
		Order("bookmarks.created_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "bookmarks")
	}
	return posts, nil
}
