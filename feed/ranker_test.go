package feed

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostsocial/rost/model"
)

func TestRankFollowedAuthorOutranksNewerPost(t *testing.T) {
	r := NewRanker(DefaultWeights())
	posts := []*model.Post{
		post("1", "2024-01-03", "A"),
		post("2", "2024-01-02", "B"),
	}

	got := r.Rank(posts, Signals{FollowedAuthors: set("B")})
	if diff := cmp.Diff([]string{"2", "1"}, ids(got)); diff != "" {
		t.Errorf("rank order mismatch (-want +got):\n%s", diff)
	}
}

func TestRankByRecencyWithoutSignals(t *testing.T) {
	r := NewRanker(DefaultWeights())
	posts := []*model.Post{
		post("old", "2024-01-01", "A"),
		post("new", "2024-01-03", "B"),
		post("mid", "2024-01-02", ""),
	}

	assert.Equal(t, []string{"new", "mid", "old"}, ids(r.Rank(posts, Signals{})))
}

func TestRankFallsBackToCreatedAt(t *testing.T) {
	r := NewRanker(DefaultWeights())
	draft := &model.Post{Id: "draft", CreatedAt: day("2024-01-05")}
	posts := []*model.Post{post("published", "2024-01-04", ""), draft}

	assert.Equal(t, []string{"draft", "published"}, ids(r.Rank(posts, Signals{})))
}

func TestScoreContributions(t *testing.T) {
	r := NewRanker(DefaultWeights())
	p := post("1", "2024-01-01", "A", "coffee", "rain")

	testCases := []struct {
		name    string
		signals Signals
		want    int
	}{
		{"none", Signals{}, 0},
		{"followed", Signals{FollowedAuthors: set("A")}, 200},
		{"liked", Signals{LikedPosts: set("1")}, 150},
		{"preferred tag", Signals{PreferredTags: set("rain", "sun")}, 60},
		{"like count", Signals{LikeCounts: map[string]int{"1": 7}}, 21},
		{"all", Signals{
			FollowedAuthors: set("A"),
			LikedPosts:      set("1"),
			PreferredTags:   set("coffee"),
			LikeCounts:      map[string]int{"1": 2},
		}, 416},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Score(p, tc.signals))
		})
	}
}

func TestScoreMissingSignalsContributeZero(t *testing.T) {
	r := NewRanker(DefaultWeights())
	p := &model.Post{Id: "bare"}
	empty := ""
	anon := &model.Post{Id: "anon", AuthorID: &empty}

	assert.Equal(t, 0, r.Score(p, Signals{FollowedAuthors: set(""), PreferredTags: set("x")}))
	assert.Equal(t, 0, r.Score(anon, Signals{FollowedAuthors: set("")}))
}

func TestScoreCustomWeights(t *testing.T) {
	r := NewRanker(Weights{Followed: 1, Liked: 2, PreferredTag: 4, PerLike: 10})
	p := post("1", "2024-01-01", "A", "t")

	assert.Equal(t, 1+2+4+30, r.Score(p, Signals{
		FollowedAuthors: set("A"),
		LikedPosts:      set("1"),
		PreferredTags:   set("t"),
		LikeCounts:      map[string]int{"1": 3},
	}))
	assert.Equal(t, Weights{Followed: 1, Liked: 2, PreferredTag: 4, PerLike: 10}, r.Weights())
}

func TestRankIsStable(t *testing.T) {
	r := NewRanker(DefaultWeights())
	var posts []*model.Post
	for _, id := range []string{"e", "b", "d", "a", "c"} {
		posts = append(posts, post(id, "2024-01-01", ""))
	}

	assert.Equal(t, []string{"e", "b", "d", "a", "c"}, ids(r.Rank(posts, Signals{})))
}

func TestRankIsDeterministic(t *testing.T) {
	r := NewRanker(DefaultWeights())
	posts := []*model.Post{
		post("1", "2024-01-01", "A", "x"),
		post("2", "2024-01-01", "B"),
		post("3", "2024-01-02", "A"),
		post("4", "2024-01-02", "C", "x"),
		post("5", "2024-01-03", ""),
	}
	s := Signals{
		FollowedAuthors: set("A"),
		LikedPosts:      set("4"),
		PreferredTags:   set("x"),
		LikeCounts:      map[string]int{"2": 40, "5": 1},
	}

	first := ids(r.Rank(posts, s))
	for i := 0; i < 20; i++ {
		require.Equal(t, first, ids(r.Rank(posts, s)))
	}
}

func TestRankMonotonicFollowBoost(t *testing.T) {
	r := NewRanker(DefaultWeights())
	a := post("a", "2024-01-01", "followed")
	b := post("b", "2024-01-01", "stranger")

	s := Signals{FollowedAuthors: set("followed")}
	assert.Equal(t, []string{"a", "b"}, ids(r.Rank([]*model.Post{a, b}, s)))
	assert.Equal(t, []string{"a", "b"}, ids(r.Rank([]*model.Post{b, a}, s)))
}

func TestRankDoesNotModifyInput(t *testing.T) {
	r := NewRanker(DefaultWeights())
	posts := []*model.Post{
		post("1", "2024-01-01", ""),
		post("2", "2024-01-02", ""),
	}

	r.Rank(posts, Signals{})
	assert.Equal(t, []string{"1", "2"}, ids(posts))
}

func TestRankSkipsNilPosts(t *testing.T) {
	r := NewRanker(DefaultWeights())
	got := r.Rank([]*model.Post{nil, post("1", "2024-01-01", ""), nil}, Signals{})
	assert.Equal(t, []string{"1"}, ids(got))
	assert.Empty(t, r.Rank(nil, Signals{}))
}

func TestRankScoredCarriesEngagement(t *testing.T) {
	r := NewRanker(DefaultWeights())
	posts := []*model.Post{post("1", "2024-01-01", ""), post("2", "2024-01-02", "")}

	got := r.RankScored(posts, Signals{
		LikedPosts: set("1"),
		LikeCounts: map[string]int{"1": 4, "2": 1},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Post.Id)
	assert.Equal(t, 162, got[0].Score)
	assert.Equal(t, 4, got[0].LikeCount)
	assert.True(t, got[0].Liked)
	assert.Equal(t, 3, got[1].Score)
	assert.False(t, got[1].Liked)
}

func TestPreferredTags(t *testing.T) {
	posts := []*model.Post{
		post("1", "2024-01-01", "", "coffee", "rain"),
		post("2", "2024-01-01", "", "sun"),
		post("3", "2024-01-01", "", "rain", "night"),
		nil,
	}

	assert.Equal(t, set("coffee", "rain", "night"), PreferredTags(posts, set("1", "3", "missing")))
	assert.Empty(t, PreferredTags(posts, nil))
}

func TestRankPreferredTagBoost(t *testing.T) {
	r := NewRanker(DefaultWeights())
	liked := post("liked", "2024-01-01", "", "rain")
	tagged := post("tagged", "2024-01-02", "", "rain")
	plain := post("plain", "2024-01-03", "")
	posts := []*model.Post{liked, tagged, plain}

	s := Signals{LikedPosts: set("liked")}
	s.PreferredTags = PreferredTags(posts, s.LikedPosts)

	// liked: 150 + 60, tagged: 60, plain: 0
	assert.Equal(t, []string{"liked", "tagged", "plain"}, ids(r.Rank(posts, s)))
}

func TestEffectiveDateTieBreak(t *testing.T) {
	r := NewRanker(DefaultWeights())
	base := day("2024-01-01")
	later := base.Add(time.Hour)
	p1 := &model.Post{Id: "1", PublishedAt: &base}
	p2 := &model.Post{Id: "2", PublishedAt: &later}

	assert.Equal(t, []string{"2", "1"}, ids(r.Rank([]*model.Post{p1, p2}, Signals{})))
}
