package model

import "time"

/*

Comment is a reader's reply under a post

Id: primary key
PostID: post the comment belongs to
AuthorName: free text name typed by the commenter
Body: comment text
CreatedAt: time when entity is created
*/

type Comment struct {
	Id         string    `gorm:"primaryKey" json:"id"`
	PostID     string    `gorm:"index" json:"postId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}
