package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

/*

Post is a piece of writing published by a Röst user

Id: primary key, use to identify a post
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Title: post's title in plain text
Slug: url friendly version of the title, unique across posts
Excerpt: optional short summary shown on cards
CoverUrl: optional cover image reference
Category: optional category name, matched exactly by filters
Tags: ordered list of tags, duplicates are not meaningful
Content: post body
PublishedAt: time when the post was published, nullable for drafts
AuthorID: profile user id of the author, nullable for anonymous posts
AuthorName: display name of the author at publish time

A post is never mutated by the feed ranker, it's read-only input there.
*/

type Post struct {
	Id          string         `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"createdAt"`
	DeletedAt   gorm.DeletedAt `json:"-"`
	Title       string         `json:"title"`
	Slug        string         `gorm:"uniqueIndex" json:"slug"`
	Excerpt     *string        `json:"excerpt"`
	CoverUrl    *string        `json:"coverUrl"`
	Category    *string        `gorm:"index" json:"category"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Content     string         `json:"content"`
	PublishedAt *time.Time     `gorm:"index" json:"publishedAt"`
	AuthorID    *string        `gorm:"index" json:"authorId"`
	AuthorName  *string        `json:"authorName"`
}

// EffectiveAt is the display ordering key of a post: its publish time if set,
// otherwise its creation time.
func (p *Post) EffectiveAt() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// HasAuthor returns true iff the post carries a non-empty author id.
func (p *Post) HasAuthor() bool {
	return p.AuthorID != nil && *p.AuthorID != ""
}

// CategoryName returns the category or an empty string.
func (p *Post) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}

// ExcerptText returns the excerpt or an empty string.
func (p *Post) ExcerptText() string {
	if p.Excerpt == nil {
		return ""
	}
	return *p.Excerpt
}
