package model

import "time"

/*

Profile is the public face of a user account. Accounts themselves live in the
hosted auth backend, a profile only mirrors what is displayed.

UserID: primary key, the subject of the auth token
Handle: unique lower-case handle, used in profile urls
DisplayName: name shown on cards and profile pages
AvatarUrl: optional avatar image reference
Bio: optional free text
*/

type Profile struct {
	UserID      string    `gorm:"primaryKey" json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	Handle      string    `gorm:"uniqueIndex" json:"handle"`
	DisplayName string    `json:"displayName"`
	AvatarUrl   *string   `json:"avatarUrl"`
	Bio         *string   `json:"bio"`
}

// ProfileStats is a read model aggregated from posts and follows.
type ProfileStats struct {
	Posts     int64 `json:"posts"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
