package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostEffectiveAt(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	published := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	draft := &Post{CreatedAt: created}
	assert.Equal(t, created, draft.EffectiveAt())

	live := &Post{CreatedAt: created, PublishedAt: &published}
	assert.Equal(t, published, live.EffectiveAt())
}

func TestPostOptionalAccessors(t *testing.T) {
	p := &Post{}
	assert.False(t, p.HasAuthor())
	assert.Equal(t, "", p.CategoryName())
	assert.Equal(t, "", p.ExcerptText())

	empty := ""
	p.AuthorID = &empty
	assert.False(t, p.HasAuthor())

	author, category, excerpt := "author_1", "Essays", "short"
	p = &Post{AuthorID: &author, Category: &category, Excerpt: &excerpt}
	assert.True(t, p.HasAuthor())
	assert.Equal(t, "Essays", p.CategoryName())
	assert.Equal(t, "short", p.ExcerptText())
}

func TestSignalJSON(t *testing.T) {
	b, err := json.Marshal(&Signal{SignalType: SignalTypeNewPosts, SessionID: "s", NewPostsCount: 2})
	assert.Nil(t, err)
	assert.JSONEq(t, `{"signalType":"NEW_POSTS","sessionId":"s","newPostsCount":2}`, string(b))

	var s Signal
	assert.Nil(t, json.Unmarshal([]byte(`{"signalType":"FEED_EMPTY"}`), &s))
	assert.Equal(t, SignalTypeFeedEmpty, s.SignalType)

	assert.Error(t, json.Unmarshal([]byte(`{"signalType":"SEED_STATE"}`), &s))
}

func TestSignalDescribe(t *testing.T) {
	assert.Equal(t, "1 new post available", (&Signal{SignalType: SignalTypeNewPosts, NewPostsCount: 1}).Describe())
	assert.Equal(t, "4 new posts available", (&Signal{SignalType: SignalTypeNewPosts, NewPostsCount: 4}).Describe())
	assert.Equal(t, "no posts match your filters", (&Signal{SignalType: SignalTypeFeedEmpty}).Describe())
	assert.Equal(t, "", (&Signal{SignalType: SignalTypeFeedSettled}).Describe())
}

func TestNewSignalCarriesMessage(t *testing.T) {
	s := NewSignal(SignalTypeNewPosts, "s", 3)
	assert.Equal(t, &Signal{SignalType: SignalTypeNewPosts, SessionID: "s", NewPostsCount: 3, Message: "3 new posts available"}, s)

	b, err := json.Marshal(s)
	assert.Nil(t, err)
	assert.JSONEq(t, `{"signalType":"NEW_POSTS","sessionId":"s","newPostsCount":3,"message":"3 new posts available"}`, string(b))

	assert.Empty(t, NewSignal(SignalTypeFeedSettled, "s", 0).Message)
}

func TestTagListUnmarshal(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want TagList
	}{
		{"array", `{"tags": [" rain ", "", "coffee"]}`, TagList{"rain", "coffee"}},
		{"comma string", `{"tags": "rain, coffee,, "}`, TagList{"rain", "coffee"}},
		{"empty string", `{"tags": ""}`, TagList{}},
		{"null", `{"tags": null}`, nil},
		{"missing", `{}`, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var in NewPostInput
			require.Nil(t, json.Unmarshal([]byte(tc.body), &in))
			assert.Equal(t, tc.want, in.Tags)
		})
	}

	var in NewPostInput
	assert.NotNil(t, json.Unmarshal([]byte(`{"tags": 12}`), &in))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, TagList{"a", "b c"}, ParseTags(" a ,b c,"))
	assert.Equal(t, TagList{}, ParseTags(""))
}
