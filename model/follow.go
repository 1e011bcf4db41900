package model

import "time"

/*

Follow is a "many-to-many" relation of a user following another user

FollowerID: user id of the follower
FollowingID: user id of the followed user
CreatedAt: time when relation is created

Existence of a row means the follower's feed boosts the followed user's posts.
*/

type Follow struct {
	FollowerID  string `gorm:"primaryKey"`
	FollowingID string `gorm:"primaryKey;index"`
	CreatedAt   time.Time
}
