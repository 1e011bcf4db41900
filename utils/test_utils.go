package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rostsocial/rost/model"
)

// TestCreateProfile creates a profile with handle, do sanity checks and returns it
func TestCreateProfile(t *testing.T, db *gorm.DB, handle string) *model.Profile {
	p := &model.Profile{
		UserID:      uuid.New().String(),
		Handle:      handle,
		DisplayName: handle,
	}
	require.Nil(t, db.Create(p).Error)
	return p
}

// TestCreatePost creates a published post by authorID (may be empty), do
// sanity checks and returns it
func TestCreatePost(t *testing.T, db *gorm.DB, title string, authorID string, publishedAt time.Time, tags ...string) *model.Post {
	p := &model.Post{
		Id:          uuid.New().String(),
		Title:       title,
		Slug:        title + "-" + RandomAlphabetString(6),
		Content:     "content of " + title,
		Tags:        tags,
		PublishedAt: &publishedAt,
	}
	if authorID != "" {
		p.AuthorID = &authorID
	}
	require.Nil(t, db.Create(p).Error)
	require.NotEmpty(t, p.Id)
	return p
}
