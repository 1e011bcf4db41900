package resolver

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/rostsocial/rost/feed"
	"github.com/rostsocial/rost/model"
)

// FeedBackend exposes the resolver as the collaborators of a feed session.
func (r *Resolver) FeedBackend() feed.Backend {
	return feed.Backend{Posts: r, Follows: r, Engagement: r}
}

// effectiveAtDesc orders posts by publication time, falling back to creation
// time, which is how a snapshot computes its anchor.
const effectiveAtDesc = "COALESCE(published_at, created_at) DESC"

// ListPosts returns posts most recent first by effective date. A missing
// limit means postsListLimit, any positive one is honored.
func (r *Resolver) ListPosts(ctx context.Context, q feed.PostQuery) ([]*model.Post, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = postsListLimit
	}

	query := r.DB.WithContext(ctx).Model(&model.Post{})
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	}
	if q.Tag != "" {
		query = query.Where("? = ANY(tags)", q.Tag)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}

	var posts []*model.Post
	if err := query.Order(effectiveAtDesc).Order("created_at desc").Limit(limit).Find(&posts).Error; err != nil {
		return nil, errors.Wrap(err, "list posts")
	}
	return posts, nil
}

// FollowingIDs returns the user ids viewerID follows.
func (r *Resolver) FollowingIDs(ctx context.Context, viewerID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", viewerID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "following ids")
	}
	return ids, nil
}

type likeCount struct {
	PostID string
	Count  int
}

// Engagement loads like counts for postIDs and the viewer's own likes among
// them.
func (r *Resolver) Engagement(ctx context.Context, postIDs []string, viewerID string) (*model.Engagement, error) {
	e := &model.Engagement{
		LikeCounts: make(map[string]int),
		Liked:      make(map[string]bool),
	}
	if len(postIDs) == 0 {
		return e, nil
	}

	var counts []likeCount
	err := r.DB.WithContext(ctx).Model(&model.Like{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&counts).Error
	if err != nil {
		return nil, errors.Wrap(err, "like counts")
	}
	for _, c := range counts {
		e.LikeCounts[c.PostID] = c.Count
	}

	if viewerID == "" {
		return e, nil
	}
	var liked []string
	err = r.DB.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id IN ?", viewerID, postIDs).
		Pluck("post_id", &liked).Error
	if err != nil {
		return nil, errors.Wrap(err, "liked posts")
	}
	for _, id := range liked {
		e.Liked[id] = true
	}
	return e, nil
}
