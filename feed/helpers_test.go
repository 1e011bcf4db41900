package feed

import (
	"time"

	"github.com/rostsocial/rost/model"
)

func day(d string) time.Time {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		panic(err)
	}
	return t
}

func post(id string, date string, author string, tags ...string) *model.Post {
	at := day(date)
	p := &model.Post{
		Id:          id,
		Title:       "post " + id,
		CreatedAt:   at,
		PublishedAt: &at,
		Tags:        tags,
	}
	if author != "" {
		p.AuthorID = &author
	}
	return p
}

func ids(posts []*model.Post) []string {
	res := make([]string, len(posts))
	for i, p := range posts {
		res[i] = p.Id
	}
	return res
}

func rankedIds(rs []Ranked) []string {
	res := make([]string, len(rs))
	for i, r := range rs {
		res[i] = r.Post.Id
	}
	return res
}

func set(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}
