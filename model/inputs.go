package model

import (
	"encoding/json"
	"strings"
)

// NewPostInput is the body of a post creation request.
type NewPostInput struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Excerpt  *string `json:"excerpt"`
	Category *string `json:"category"`
	CoverUrl *string `json:"coverUrl"`
	Tags     TagList `json:"tags"`
}

// NewCommentInput is the body of a comment creation request.
type NewCommentInput struct {
	PostID     string `json:"postId"`
	Body       string `json:"body"`
	AuthorName string `json:"authorName"`
}

// TagList accepts tags either as a JSON array or as one comma separated
// string. Entries are trimmed and empty ones dropped.
type TagList []string

func (l *TagList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = cleanTags(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = ParseTags(s)
	return nil
}

// ParseTags splits a comma separated tag string.
func ParseTags(s string) TagList {
	return cleanTags(strings.Split(s, ","))
}

func cleanTags(tags []string) TagList {
	res := TagList{}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			res = append(res, t)
		}
	}
	return res
}
