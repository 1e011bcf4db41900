package model

// Category is a curated top-level grouping of posts.
type Category struct {
	Id   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
}

// Tag is a curated tag offered as a mood filter.
type Tag struct {
	Id   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
}

// LiveStats is the site wide counter summary.
type LiveStats struct {
	TotalPosts      int64 `json:"totalPosts"`
	TotalComments   int64 `json:"totalComments"`
	TotalBookmarks  int64 `json:"totalBookmarks"`
	TotalCategories int64 `json:"totalCategories"`
	TotalTags       int64 `json:"totalTags"`
	UniqueAuthors   int64 `json:"uniqueAuthors"`
}
