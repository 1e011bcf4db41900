package feed

import (
	"strings"

	"github.com/rostsocial/rost/model"
)

// Filter narrows a snapshot down before ranking. The zero value matches
// everything.
type Filter struct {
	// Category is matched exactly against the post's category.
	Category string `json:"category"`
	// Tags match when at least one of them is on the post.
	Tags []string `json:"tags"`
	// Search is a case-insensitive substring of the title or the excerpt.
	Search string `json:"search"`
}

func (f Filter) IsZero() bool {
	return f.Category == "" && len(f.Tags) == 0 && strings.TrimSpace(f.Search) == ""
}

func (f Filter) Match(p *model.Post) bool {
	if p == nil {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.ExcerptText()), q) {
			return false
		}
	}
	if f.Category != "" && p.CategoryName() != f.Category {
		return false
	}
	if len(f.Tags) > 0 {
		matched := false
		for _, want := range f.Tags {
			for _, have := range p.Tags {
				if want == have {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// Apply returns the posts matching the filter, in input order.
func (f Filter) Apply(posts []*model.Post) []*model.Post {
	res := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		if f.Match(p) {
			res = append(res, p)
		}
	}
	return res
}

// Equal compares two filters, ignoring tag order and duplicates.
func (f Filter) Equal(o Filter) bool {
	if f.Category != o.Category || strings.TrimSpace(f.Search) != strings.TrimSpace(o.Search) {
		return false
	}
	a, b := tagSet(f.Tags), tagSet(o.Tags)
	if len(a) != len(b) {
		return false
	}
	for t := range a {
		if !b[t] {
			return false
		}
	}
	return true
}

func tagSet(tags []string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return m
}
