package feed

import (
	"sort"
	"time"

	"github.com/rostsocial/rost/model"
)

// Weights are the score contributions of each personalization signal. They
// are tuning constants without a documented rationale, so they stay
// configurable through the app setting file.
type Weights struct {
	Followed     int `yaml:"FOLLOWED"`
	Liked        int `yaml:"LIKED"`
	PreferredTag int `yaml:"PREFERRED_TAG"`
	PerLike      int `yaml:"PER_LIKE"`
}

func DefaultWeights() Weights {
	return Weights{
		Followed:     200,
		Liked:        150,
		PreferredTag: 60,
		PerLike:      3,
	}
}

// Signals are the viewer specific inputs of a ranking pass. Any nil map is
// treated as empty.
type Signals struct {
	FollowedAuthors map[string]bool
	LikedPosts      map[string]bool
	LikeCounts      map[string]int
	PreferredTags   map[string]bool
}

// Ranked is a post together with what the ranker computed for it.
type Ranked struct {
	Post      *model.Post `json:"post"`
	Score     int         `json:"score"`
	LikeCount int         `json:"likeCount"`
	Liked     bool        `json:"liked"`
}

type Ranker struct {
	weights Weights
}

func NewRanker(w Weights) *Ranker {
	return &Ranker{weights: w}
}

func (r *Ranker) Weights() Weights {
	return r.weights
}

// Score returns the personalization score of a single post. Missing signals
// contribute zero.
func (r *Ranker) Score(p *model.Post, s Signals) int {
	score := 0
	if p.HasAuthor() && s.FollowedAuthors[*p.AuthorID] {
		score += r.weights.Followed
	}
	if s.LikedPosts[p.Id] {
		score += r.weights.Liked
	}
	if hasAnyTag(p, s.PreferredTags) {
		score += r.weights.PreferredTag
	}
	score += r.weights.PerLike * s.LikeCounts[p.Id]
	return score
}

// Rank orders posts by descending score, then by descending effective date.
// Posts equal on both keys keep their input order. The input is not modified.
func (r *Ranker) Rank(posts []*model.Post, s Signals) []*model.Post {
	ranked := r.RankScored(posts, s)
	res := make([]*model.Post, len(ranked))
	for i, rp := range ranked {
		res[i] = rp.Post
	}
	return res
}

// RankScored is Rank but keeps the computed score and engagement of each post.
func (r *Ranker) RankScored(posts []*model.Post, s Signals) []Ranked {
	type entry struct {
		Ranked
		at time.Time
	}
	entries := make([]entry, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		entries = append(entries, entry{
			Ranked: Ranked{
				Post:      p,
				Score:     r.Score(p, s),
				LikeCount: s.LikeCounts[p.Id],
				Liked:     s.LikedPosts[p.Id],
			},
			at: p.EffectiveAt(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].at.After(entries[j].at)
	})

	res := make([]Ranked, len(entries))
	for i, e := range entries {
		res[i] = e.Ranked
	}
	return res
}

// PreferredTags collects the tags of every post in posts the viewer has liked.
func PreferredTags(posts []*model.Post, liked map[string]bool) map[string]bool {
	tags := make(map[string]bool)
	for _, p := range posts {
		if p == nil || !liked[p.Id] {
			continue
		}
		for _, t := range p.Tags {
			tags[t] = true
		}
	}
	return tags
}

func hasAnyTag(p *model.Post, tags map[string]bool) bool {
	if len(tags) == 0 {
		return false
	}
	for _, t := range p.Tags {
		if tags[t] {
			return true
		}
	}
	return false
}
