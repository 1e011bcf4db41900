package feed

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostsocial/rost/model"
)

func initial() []*model.Post {
	return []*model.Post{
		post("5", "2024-01-05", "A"),
		post("4", "2024-01-04", "B"),
		post("3", "2024-01-03", "A"),
	}
}

func withNewer() []*model.Post {
	return append([]*model.Post{post("6", "2024-01-06", "C")}, initial()...)
}

func apply(r *Reconciler, posts []*model.Post) Transition {
	return r.Apply(r.Begin(), posts)
}

func TestReconcilerStartsEmpty(t *testing.T) {
	r := NewReconciler()
	assert.Equal(t, StateEmpty, r.State().Kind())
	assert.True(t, r.Anchor().IsZero())
	assert.Empty(t, r.Displayed())
	assert.Equal(t, 0, r.NewPostsCount())
}

func TestReconcilerFirstFetchSettles(t *testing.T) {
	r := NewReconciler()
	tr := apply(r, initial())

	assert.Equal(t, Transition{From: StateEmpty, To: StateSettled}, tr)
	assert.True(t, tr.Changed())
	assert.Equal(t, StateSettled, r.State().Kind())
	assert.Equal(t, day("2024-01-05"), r.Anchor())
	assert.Equal(t, []string{"5", "4", "3"}, ids(r.Displayed()))
}

func TestReconcilerNewerFetchIsHeld(t *testing.T) {
	r := NewReconciler()
	apply(r, initial())

	tr := apply(r, withNewer())
	assert.Equal(t, Transition{From: StateSettled, To: StatePending, NewCount: 1}, tr)
	assert.True(t, tr.Changed())

	pending, ok := r.State().(Pending)
	require.True(t, ok)
	assert.Equal(t, 1, pending.NewCount())
	assert.Equal(t, 1, r.NewPostsCount())
	assert.Equal(t, day("2024-01-06"), pending.Incoming().Anchor())

	// The displayed list stays untouched until the viewer asks.
	assert.Equal(t, []string{"5", "4", "3"}, ids(r.Displayed()))
	assert.Equal(t, day("2024-01-05"), r.Anchor())
	assert.Equal(t, []string{"6", "5", "4", "3"}, ids(r.Live()))
}

func TestReconcilerShowLatest(t *testing.T) {
	r := NewReconciler()
	apply(r, initial())
	apply(r, withNewer())

	tr := r.ShowLatest()
	assert.Equal(t, Transition{From: StatePending, To: StateSettled}, tr)
	assert.Equal(t, StateSettled, r.State().Kind())
	assert.Equal(t, day("2024-01-06"), r.Anchor())
	assert.Equal(t, []string{"6", "5", "4", "3"}, ids(r.Displayed()))
	assert.Equal(t, 0, r.NewPostsCount())
}

func TestReconcilerShowLatestIsNoopUnlessPending(t *testing.T) {
	r := NewReconciler()
	tr := r.ShowLatest()
	assert.Equal(t, Transition{From: StateEmpty, To: StateEmpty}, tr)
	assert.False(t, tr.Changed())

	apply(r, initial())
	tr = r.ShowLatest()
	assert.Equal(t, Transition{From: StateSettled, To: StateSettled}, tr)
	assert.False(t, tr.Changed())
	assert.Equal(t, []string{"5", "4", "3"}, ids(r.Displayed()))
}

func TestReconcilerZeroPostsEmpties(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(r *Reconciler)
		from  StateKind
	}{
		{"from empty", func(r *Reconciler) {}, StateEmpty},
		{"from settled", func(r *Reconciler) { apply(r, initial()) }, StateSettled},
		{"from pending", func(r *Reconciler) {
			apply(r, initial())
			apply(r, withNewer())
		}, StatePending},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReconciler()
			tc.setup(r)

			tr := apply(r, []*model.Post{})
			assert.Equal(t, Transition{From: tc.from, To: StateEmpty}, tr)
			assert.Equal(t, StateEmpty, r.State().Kind())
			assert.True(t, r.Anchor().IsZero())
			assert.Empty(t, r.Displayed())
			assert.Empty(t, r.Live())
			assert.Equal(t, 0, r.NewPostsCount())
		})
	}
}

func TestReconcilerSwallowsNotNewerFetch(t *testing.T) {
	r := NewReconciler()
	apply(r, initial())

	// Same anchor, more likes, different order: nothing materially new.
	reordered := []*model.Post{post("3", "2024-01-03", "A"), post("5", "2024-01-05", "A")}
	tr := apply(r, reordered)
	assert.Equal(t, Transition{From: StateSettled, To: StateSettled, Swallowed: true}, tr)
	assert.False(t, tr.Changed())

	assert.Equal(t, []string{"5", "4", "3"}, ids(r.Displayed()))
	assert.Equal(t, day("2024-01-05"), r.Anchor())
	assert.Equal(t, []string{"3", "5"}, ids(r.Live()))
}

func TestReconcilerAnchorNeverRegresses(t *testing.T) {
	r := NewReconciler()
	apply(r, withNewer())
	require.Equal(t, day("2024-01-06"), r.Anchor())

	older := []*model.Post{post("2", "2024-01-02", ""), post("1", "2024-01-01", "")}
	apply(r, older)
	apply(r, initial())

	assert.Equal(t, StateSettled, r.State().Kind())
	assert.Equal(t, day("2024-01-06"), r.Anchor())
	assert.Equal(t, []string{"6", "5", "4", "3"}, ids(r.Displayed()))
}

func TestReconcilerPendingUpdatesWithNewerFetch(t *testing.T) {
	r := NewReconciler()
	apply(r, initial())
	apply(r, withNewer())

	newest := append([]*model.Post{post("7", "2024-01-07", "")}, withNewer()...)
	tr := apply(r, newest)
	assert.Equal(t, Transition{From: StatePending, To: StatePending, NewCount: 2}, tr)
	assert.Equal(t, 2, r.NewPostsCount())
	assert.Equal(t, []string{"5", "4", "3"}, ids(r.Displayed()))

	r.ShowLatest()
	assert.Equal(t, day("2024-01-07"), r.Anchor())
	assert.Equal(t, []string{"7", "6", "5", "4", "3"}, ids(r.Displayed()))
}

func TestReconcilerPendingKeepsNewerIncoming(t *testing.T) {
	r := NewReconciler()
	apply(r, initial())
	apply(r, append([]*model.Post{post("7", "2024-01-07", "")}, withNewer()...))

	// A fetch that is newer than displayed but older than what's held.
	tr := apply(r, withNewer())
	assert.True(t, tr.Swallowed)
	assert.Equal(t, 2, tr.NewCount)
	assert.Equal(t, 2, r.NewPostsCount())

	// And one that's not newer than displayed at all.
	tr = apply(r, initial())
	assert.True(t, tr.Swallowed)
	assert.Equal(t, StatePending, r.State().Kind())

	r.ShowLatest()
	assert.Equal(t, day("2024-01-07"), r.Anchor())
}

func TestReconcilerIgnoresStaleTickets(t *testing.T) {
	r := NewReconciler()
	slow := r.Begin()
	fast := r.Begin()

	r.Apply(fast, withNewer())
	tr := r.Apply(slow, []*model.Post{})

	assert.True(t, tr.Stale)
	assert.False(t, tr.Changed())
	assert.Equal(t, StateSettled, r.State().Kind())
	assert.Equal(t, []string{"6", "5", "4", "3"}, ids(r.Live()))
}

func TestReconcilerFailKeepsState(t *testing.T) {
	r := NewReconciler()
	apply(r, initial())

	tr := r.Fail(r.Begin())
	assert.Equal(t, Transition{From: StateSettled, To: StateSettled}, tr)
	assert.Equal(t, []string{"5", "4", "3"}, ids(r.Displayed()))

	stale := r.Begin()
	apply(r, withNewer())
	assert.True(t, r.Fail(stale).Stale)
	assert.Equal(t, StatePending, r.State().Kind())
}

func TestReconcilerDisplayedIsACopy(t *testing.T) {
	r := NewReconciler()
	apply(r, initial())

	d := r.Displayed()
	d[0] = post("x", "2030-01-01", "")
	assert.Equal(t, []string{"5", "4", "3"}, ids(r.Displayed()))
}

func TestReconcilerConcurrentFetches(t *testing.T) {
	r := NewReconciler()
	apply(r, initial())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ticket := r.Begin()
			if i%2 == 0 {
				r.Apply(ticket, withNewer())
			} else {
				r.Apply(ticket, initial())
			}
		}(i)
	}
	wg.Wait()

	// Whatever the completion order, the displayed snapshot never moved.
	assert.Equal(t, day("2024-01-05"), r.Anchor())
	assert.Equal(t, []string{"5", "4", "3"}, ids(r.Displayed()))
	assert.NotEqual(t, StateEmpty, r.State().Kind())
}

func TestStateKindText(t *testing.T) {
	assert.Equal(t, "EMPTY", StateEmpty.String())
	assert.Equal(t, "SETTLED", StateSettled.String())
	assert.Equal(t, "PENDING", StatePending.String())
	b, err := StatePending.MarshalText()
	assert.Nil(t, err)
	assert.Equal(t, "PENDING", string(b))

	var k StateKind
	require.Nil(t, k.UnmarshalText([]byte("SETTLED")))
	assert.Equal(t, StateSettled, k)
	assert.NotNil(t, k.UnmarshalText([]byte("LOADING")))
}

func TestNewSnapshot(t *testing.T) {
	s := NewSnapshot([]*model.Post{nil, post("1", "2024-01-02", ""), post("2", "2024-01-09", ""), nil})
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, day("2024-01-09"), s.Anchor())
	assert.Equal(t, 1, s.countNewerThan(day("2024-01-05")))
	assert.True(t, NewSnapshot(nil).Anchor().IsZero())
}
