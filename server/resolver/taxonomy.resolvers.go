package resolver

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rostsocial/rost/model"
)

func (r *Resolver) Categories(ctx context.Context) ([]*model.Category, error) {
	categories := []*model.Category{}
	if err := r.DB.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, errors.Wrap(err, "categories")
	}
	return categories, nil
}

func (r *Resolver) Tags(ctx context.Context) ([]*model.Tag, error) {
	tags := []*model.Tag{}
	if err := r.DB.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "tags")
	}
	return tags, nil
}

// LiveStats counts the site wide totals. Authors are counted by distinct
// non-empty author name.
func (r *Resolver) LiveStats(ctx context.Context) (*model.LiveStats, error) {
	stats := &model.LiveStats{}
	db := r.DB.WithContext(ctx)

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&model.Post{}, &stats.TotalPosts},
		{&model.Comment{}, &stats.TotalComments},
		{&model.Bookmark{}, &stats.TotalBookmarks},
		{&model.Category{}, &stats.TotalCategories},
		{&model.Tag{}, &stats.TotalTags},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, errors.Wrap(err, "live stats")
		}
	}

	err := db.Model(&model.Post{}).
		Where("author_name IS NOT NULL AND author_name <> ''").
		Distinct("author_name").
		Count(&stats.UniqueAuthors).Error
	if err != nil {
		return nil, errors.Wrap(err, "live stats authors")
	}
	return stats, nil
}
