package model

import "time"

/*

Like is a "many-to-many" relation of a user liking a post

UserID: user id
PostID: post id
CreatedAt: time when relation is created
*/

type Like struct {
	UserID    string `gorm:"primaryKey"`
	PostID    string `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

/*

Bookmark is a "many-to-many" relation of a user saving a post for later

UserID: user id
PostID: post id
CreatedAt: time when relation is created
*/

type Bookmark struct {
	UserID    string `gorm:"primaryKey"`
	PostID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// Engagement carries per post engagement signals for a set of posts. Posts
// missing from LikeCounts have zero likes, posts missing from Liked are not
// liked by the viewer.
type Engagement struct {
	LikeCounts map[string]int
	Liked      map[string]bool
}

// LikeState is returned after a like toggle.
type LikeState struct {
	PostID string `json:"postId"`
	Liked  bool   `json:"liked"`
	Count  int64  `json:"count"`
}
