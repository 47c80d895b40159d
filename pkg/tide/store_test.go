package tide

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect drains a subscription until its channel closes. Call after the
// store has been closed.
func collect[S any](sub *Subscription[S]) []S {
	var out []S
	for v := range sub.Values() {
		out = append(out, v)
	}
	return out
}

func TestStore_InitialState(t *testing.T) {
	s := NewStore(42)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, 42, s.State())
}

func TestStore_EmitReplacesState(t *testing.T) {
	s := NewStore("a")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Emit("b"))
	assert.Equal(t, "b", s.State())
}

func TestStore_DistinctFilterUsesValueEquality(t *testing.T) {
	type point struct{ X, Y int }

	s := NewStore(point{1, 2})
	t.Cleanup(func() { _ = s.Close() })

	var mu sync.Mutex
	var seen []point
	s.Listen(func(p point) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p)
	})

	// Value-equal, not identical: must be filtered.
	require.NoError(t, s.Emit(point{1, 2}))
	require.NoError(t, s.Emit(point{3, 4}))
	require.NoError(t, s.Emit(point{3, 4}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []point{{3, 4}}, seen)
}

// upperLower is a state type with custom value equality: case-insensitive.
type upperLower struct{ s string }

func (u upperLower) Equal(other any) bool {
	o, ok := other.(upperLower)
	return ok && strings.EqualFold(u.s, o.s)
}

func TestStore_EqualerOverridesDeepEqual(t *testing.T) {
	s := NewStore(upperLower{"GO"})
	t.Cleanup(func() { _ = s.Close() })

	count := 0
	s.Listen(func(upperLower) { count++ })

	require.NoError(t, s.Emit(upperLower{"go"})) // equal per Equal, filtered
	require.NoError(t, s.Emit(upperLower{"rust"}))

	assert.Equal(t, 1, count)
}

func TestStore_SubscribeReceivesSequence(t *testing.T) {
	s := NewStore(0)
	sub := s.Subscribe()

	require.NoError(t, s.Emit(1))
	require.NoError(t, s.Emit(2))
	require.NoError(t, s.Emit(3))
	require.NoError(t, s.Close())

	assert.Equal(t, []int{1, 2, 3}, collect(sub))
}

func TestStore_LateSubscriberDoesNotReplay(t *testing.T) {
	s := NewStore(0)

	require.NoError(t, s.Emit(1))
	sub := s.Subscribe()
	require.NoError(t, s.Emit(2))
	require.NoError(t, s.Close())

	assert.Equal(t, []int{2}, collect(sub))
}

func TestStore_BroadcastToMultipleSubscribers(t *testing.T) {
	s := NewStore(0)
	first := s.Subscribe()
	second := s.Subscribe()

	require.NoError(t, s.Emit(7))
	require.NoError(t, s.Emit(8))
	require.NoError(t, s.Close())

	assert.Equal(t, []int{7, 8}, collect(first))
	assert.Equal(t, []int{7, 8}, collect(second))
}

func TestStore_SubscriptionCancelStopsDelivery(t *testing.T) {
	s := NewStore(0)
	t.Cleanup(func() { _ = s.Close() })

	sub := s.Subscribe()
	sub.Cancel()
	sub.Cancel() // idempotent

	require.NoError(t, s.Emit(1))

	_, ok := <-sub.Values()
	assert.False(t, ok, "canceled subscription channel should be closed")
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	o := installObserver(t)

	s := NewStore(0)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, 1, o.closeCount())
}

func TestStore_EmitAfterCloseReturnsAndReports(t *testing.T) {
	o := installObserver(t)

	s := NewStore(0)
	count := 0
	s.Listen(func(int) { count++ })
	require.NoError(t, s.Close())

	err := s.Emit(1)
	require.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, count, "no publication after close")
	assert.Equal(t, 0, s.State())

	errs := o.errors()
	require.Len(t, errs, 1)
	var terr *Error
	require.ErrorAs(t, errs[0], &terr)
	assert.Equal(t, KindClosed, terr.Kind)
	assert.Equal(t, "store.Emit", terr.Op)
}

func TestStore_OnChangeHookSeesOldAndNewBeforeSwap(t *testing.T) {
	var s *Store[int]
	var hookCurrent, hookNext, hookState int
	s = NewStore(1, WithOnChange(func(current, next int) {
		hookCurrent = current
		hookNext = next
		hookState = s.State() // swap has not happened yet
	}))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Emit(2))

	assert.Equal(t, 1, hookCurrent)
	assert.Equal(t, 2, hookNext)
	assert.Equal(t, 1, hookState)
	assert.Equal(t, 2, s.State())
}

func TestStore_OnChangeHookPanicGoesToErrorChannel(t *testing.T) {
	o := installObserver(t)

	s := NewStore(0, WithOnChange(func(current, next int) {
		panic("hook failed")
	}))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Emit(1), "hook panic must not reach the emit caller")
	assert.Equal(t, 1, s.State(), "swap still happens")

	errs := o.errors()
	require.Len(t, errs, 1)
	var terr *Error
	require.ErrorAs(t, errs[0], &terr)
	assert.Equal(t, KindPanic, terr.Kind)
}

func TestStore_ListenUnsubscribe(t *testing.T) {
	s := NewStore(0)
	t.Cleanup(func() { _ = s.Close() })

	count := 0
	remove := s.Listen(func(int) { count++ })

	require.NoError(t, s.Emit(1))
	remove()
	require.NoError(t, s.Emit(2))

	assert.Equal(t, 1, count)
}

func TestStore_LabelUsesNameWhenSet(t *testing.T) {
	named := NewStore(0, WithName[int]("settings"))
	t.Cleanup(func() { _ = named.Close() })
	assert.Equal(t, "settings", named.Label())

	anon := NewStore(0)
	t.Cleanup(func() { _ = anon.Close() })
	assert.Contains(t, anon.Label(), "*tide.Store[int]#")
}

func TestStore_SubscribeAfterClose(t *testing.T) {
	s := NewStore(0)
	require.NoError(t, s.Close())

	sub := s.Subscribe()
	_, ok := <-sub.Values()
	assert.False(t, ok)
	sub.Cancel()
}
