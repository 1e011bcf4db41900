package resolver

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rostsocial/rost/model"
)

// ProfileWithStats is a profile page.
type ProfileWithStats struct {
	Profile *model.Profile     `json:"profile"`
	Stats   model.ProfileStats `json:"stats"`
}

// ProfileByHandle looks a profile up by its case-insensitive handle.
func (r *Resolver) ProfileByHandle(ctx context.Context, handle string) (*ProfileWithStats, error) {
	var profile model.Profile
	err := r.DB.WithContext(ctx).Where("handle = ?", strings.ToLower(handle)).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "profile by handle")
	}

	res := &ProfileWithStats{Profile: &profile}
	db := r.DB.WithContext(ctx)
	if err := db.Model(&model.Post{}).Where("author_id = ?", profile.UserID).Count(&res.Stats.Posts).Error; err != nil {
		return nil, errors.Wrap(err, "profile posts count")
	}
	if err := db.Model(&model.Follow{}).Where("following_id = ?", profile.UserID).Count(&res.Stats.Followers).Error; err != nil {
		return nil, errors.Wrap(err, "profile followers count")
	}
	if err := db.Model(&model.Follow{}).Where("follower_id = ?", profile.UserID).Count(&res.Stats.Following).Error; err != nil {
		return nil, errors.Wrap(err, "profile following count")
	}
	return res, nil
}

// SearchProfiles matches q against handles and display names. A leading "@"
// is ignored and queries shorter than two characters match nothing.
func (r *Resolver) SearchProfiles(ctx context.Context, q string) ([]*model.Profile, error) {
	q = strings.TrimPrefix(strings.TrimSpace(q), "@")
	profiles := []*model.Profile{}
	if len([]rune(q)) < minProfileQueryLen {
		return profiles, nil
	}

	pattern := "%" + q + "%"
	err := r.DB.WithContext(ctx).
		Where("handle ILIKE ? OR display_name ILIKE ?", pattern, pattern).
		Order("display_name").
		Limit(profileSearchLimit).
		Find(&profiles).Error
	if err != nil {
		return nil, errors.Wrap(err, "search profiles")
	}
	return profiles, nil
}
