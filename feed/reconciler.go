package feed

import (
	"fmt"
	"sync"
	"time"

	"github.com/rostsocial/rost/model"
)

// Snapshot is an immutable batch of posts captured by one fetch. Anchor is
// the newest effective date among its posts.
type Snapshot struct {
	posts  []*model.Post
	anchor time.Time
}

func NewSnapshot(posts []*model.Post) Snapshot {
	s := Snapshot{posts: make([]*model.Post, 0, len(posts))}
	for _, p := range posts {
		if p == nil {
			continue
		}
		s.posts = append(s.posts, p)
		if at := p.EffectiveAt(); at.After(s.anchor) {
			s.anchor = at
		}
	}
	return s
}

// Posts returns a copy of the snapshot's posts in fetch order.
func (s Snapshot) Posts() []*model.Post {
	res := make([]*model.Post, len(s.posts))
	copy(res, s.posts)
	return res
}

func (s Snapshot) Anchor() time.Time { return s.anchor }

func (s Snapshot) Len() int { return len(s.posts) }

// countNewerThan counts posts whose effective date is strictly after t.
func (s Snapshot) countNewerThan(t time.Time) int {
	n := 0
	for _, p := range s.posts {
		if p.EffectiveAt().After(t) {
			n++
		}
	}
	return n
}

type StateKind int

const (
	StateEmpty StateKind = iota
	StateSettled
	StatePending
)

func (k StateKind) String() string {
	switch k {
	case StateEmpty:
		return "EMPTY"
	case StateSettled:
		return "SETTLED"
	case StatePending:
		return "PENDING"
	}
	return "UNKNOWN"
}

func (k StateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *StateKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "EMPTY":
		*k = StateEmpty
	case "SETTLED":
		*k = StateSettled
	case "PENDING":
		*k = StatePending
	default:
		return fmt.Errorf("%s is not a valid StateKind", text)
	}
	return nil
}

// State is one of Empty, Settled or Pending. The set is closed: only this
// package can build states, so a Pending always holds incoming data.
type State interface {
	Kind() StateKind
	// Displayed is the snapshot currently shown, zero for Empty.
	Displayed() Snapshot
	sealed()
}

type Empty struct{}

func (Empty) Kind() StateKind     { return StateEmpty }
func (Empty) Displayed() Snapshot { return Snapshot{} }
func (Empty) sealed()             {}

type Settled struct {
	displayed Snapshot
}

func (s Settled) Kind() StateKind     { return StateSettled }
func (s Settled) Displayed() Snapshot { return s.displayed }
func (Settled) sealed()               {}

type Pending struct {
	displayed Snapshot
	incoming  Snapshot
	newCount  int
}

func (s Pending) Kind() StateKind     { return StatePending }
func (s Pending) Displayed() Snapshot { return s.displayed }
func (Pending) sealed()               {}

// Incoming is the held snapshot that "show latest" will promote.
func (s Pending) Incoming() Snapshot { return s.incoming }

// NewCount is the number of held posts newer than the displayed anchor.
func (s Pending) NewCount() int { return s.newCount }

// Ticket identifies one fetch. Tickets are issued in increasing order.
type Ticket uint64

// Transition describes what applying a fetch result or a viewer action did.
type Transition struct {
	From     StateKind `json:"from"`
	To       StateKind `json:"to"`
	NewCount int       `json:"newCount"`
	// Stale is set when the result came from a fetch superseded by a newer
	// one and was dropped.
	Stale bool `json:"stale"`
	// Swallowed is set when a fetch updated the live pool only.
	Swallowed bool `json:"swallowed"`
}

// Changed returns true iff the transition is visible to the viewer, either
// through the displayed list or the new posts counter.
func (t Transition) Changed() bool {
	if t.Stale || t.Swallowed {
		return false
	}
	return t.From != t.To || t.To == StatePending
}

// Reconciler decides when freshly fetched posts replace what the viewer is
// reading. New content is held until the viewer asks for it, so a push never
// reorders the list under an active reader.
type Reconciler struct {
	mu      sync.Mutex
	state   State
	live    []*model.Post
	issued  Ticket
	applied Ticket
}

func NewReconciler() *Reconciler {
	return &Reconciler{state: Empty{}}
}

// Begin issues the ticket for a fetch about to start.
func (r *Reconciler) Begin() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
	return r.issued
}

// Apply feeds the result of the fetch identified by t into the state machine.
func (r *Reconciler) Apply(t Ticket, posts []*model.Post) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := r.state.Kind()
	if t < r.applied {
		return Transition{From: from, To: from, Stale: true}
	}
	r.applied = t

	snap := NewSnapshot(posts)
	r.live = snap.posts

	if snap.Len() == 0 {
		r.state = Empty{}
		r.live = nil
		return Transition{From: from, To: StateEmpty}
	}

	switch s := r.state.(type) {
	case Empty:
		r.state = Settled{displayed: snap}
		return Transition{From: from, To: StateSettled}

	case Settled:
		if !snap.anchor.After(s.displayed.anchor) {
			return Transition{From: from, To: StateSettled, Swallowed: true}
		}
		n := snap.countNewerThan(s.displayed.anchor)
		r.state = Pending{displayed: s.displayed, incoming: snap, newCount: n}
		return Transition{From: from, To: StatePending, NewCount: n}

	case Pending:
		// Nothing newer than what is shown, or older than what is already held:
		// keep holding the current incoming snapshot.
		if !snap.anchor.After(s.displayed.anchor) || snap.anchor.Before(s.incoming.anchor) {
			return Transition{From: from, To: StatePending, NewCount: s.newCount, Swallowed: true}
		}
		n := snap.countNewerThan(s.displayed.anchor)
		r.state = Pending{displayed: s.displayed, incoming: snap, newCount: n}
		return Transition{From: from, To: StatePending, NewCount: n}
	}

	return Transition{From: from, To: from}
}

// Fail records a failed fetch. The displayed state is left untouched, a stale
// but consistent view is preferred over a broken one.
func (r *Reconciler) Fail(t Ticket) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.state.Kind()
	return Transition{From: k, To: k, Stale: t < r.applied}
}

// ShowLatest promotes the held snapshot. It is a no-op unless Pending.
func (r *Reconciler) ShowLatest() Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.state.(Pending)
	if !ok {
		k := r.state.Kind()
		return Transition{From: k, To: k}
	}
	r.state = Settled{displayed: s.incoming}
	return Transition{From: StatePending, To: StateSettled}
}

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Anchor is the effective date of the newest displayed post, zero when Empty.
func (r *Reconciler) Anchor() time.Time {
	return r.State().Displayed().Anchor()
}

// Displayed returns the posts currently shown, in fetch order.
func (r *Reconciler) Displayed() []*model.Post {
	return r.State().Displayed().Posts()
}

// NewPostsCount is the "N new posts available" counter, zero unless Pending.
func (r *Reconciler) NewPostsCount() int {
	if p, ok := r.State().(Pending); ok {
		return p.NewCount()
	}
	return 0
}

// Live returns the most recent fetch result regardless of what is displayed.
func (r *Reconciler) Live() []*model.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*model.Post, len(r.live))
	copy(res, r.live)
	return res
}
