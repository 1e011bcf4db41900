package resolver

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rostsocial/rost/feed"
	"github.com/rostsocial/rost/model"
	"github.com/rostsocial/rost/utils"
)

const (
	defaultSlug      = "post"
	slugSuffixLength = 6
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases title, collapses every run of non alphanumerics into a
// single "-" and trims dashes from both ends.
func Slugify(title string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// Posts lists the latest posts matching the query params, at most
// postsListLimit of them.
func (r *Resolver) Posts(ctx context.Context, search, tag, category string) ([]*model.Post, error) {
	return r.ListPosts(ctx, feed.PostQuery{
		Limit:    postsListLimit,
		Search:   search,
		Tag:      tag,
		Category: category,
	})
}

func (r *Resolver) PostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "post by slug")
	}
	return &post, nil
}

// CreatePost publishes a post authored by viewerID, or anonymously when
// viewerID is empty.
func (r *Resolver) CreatePost(ctx context.Context, input model.NewPostInput, viewerID string) (*model.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Content) == "" {
		return nil, errors.Wrap(ErrInvalidInput, "title and content are required")
	}

	now := time.Now()
	post := model.Post{
		Id:          uuid.New().String(),
		Title:       title,
		Content:     input.Content,
		Excerpt:     input.Excerpt,
		Category:    input.Category,
		CoverUrl:    input.CoverUrl,
		Tags:        []string(input.Tags),
		PublishedAt: &now,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if viewerID != "" {
			post.AuthorID = &viewerID
			var author model.Profile
			if err := tx.Where("user_id = ?", viewerID).First(&author).Error; err == nil {
				post.AuthorName = &author.DisplayName
			}
		}

		slug, err := uniqueSlug(tx, Slugify(title))
		if err != nil {
			return err
		}
		post.Slug = slug
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "create post")
	}

	r.notifyPostsChanged(ctx, "INSERT")
	return &post, nil
}

// uniqueSlug appends a random suffix when base is empty or already taken.
func uniqueSlug(tx *gorm.DB, base string) (string, error) {
	if base == "" {
		base = defaultSlug
	}
	slug := base
	for i := 0; i < 5; i++ {
		var count int64
		if err := tx.Unscoped().Model(&model.Post{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = base + "-" + utils.RandomAlphabetString(slugSuffixLength)
	}
	return "", errors.Errorf("no free slug for %q", base)
}

// Comments of the post with slug, oldest first.
func (r *Resolver) Comments(ctx context.Context, slug string) ([]*model.Comment, error) {
	post, err := r.PostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments := []*model.Comment{}
	err = r.DB.WithContext(ctx).Where("post_id = ?", post.Id).Order("created_at asc").Find(&comments).Error
	if err != nil {
		return nil, errors.Wrap(err, "comments")
	}
	return comments, nil
}

func (r *Resolver) AddComment(ctx context.Context, input model.NewCommentInput) (*model.Comment, error) {
	if input.PostID == "" || strings.TrimSpace(input.Body) == "" || strings.TrimSpace(input.AuthorName) == "" {
		return nil, errors.Wrap(ErrInvalidInput, "postId, author name, and body are required")
	}

	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.Post{}).Where("id = ?", input.PostID).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "add comment")
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	comment := model.Comment{
		Id:         uuid.New().String(),
		PostID:     input.PostID,
		AuthorName: strings.TrimSpace(input.AuthorName),
		Body:       input.Body,
	}
	if err := r.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, errors.Wrap(err, "add comment")
	}
	return &comment, nil
}
