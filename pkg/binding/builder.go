package binding

import (
	"github.com/go-drift/drift/pkg/core"
	"github.com/go-drift/drift/pkg/drift"
)

// StateSource is the read side of a tide container. Both *tide.Store[S]
// and *tide.Bloc[S, E] satisfy it.
type StateSource[S any] interface {
	// State returns the current state.
	State() S
	// Listen registers fn for each state change and returns a function
	// that removes the listener.
	Listen(fn func(S)) func()
}

// StoreBuilder rebuilds its subtree whenever Source emits a new state.
//
// Listeners fire on the emitting goroutine; StoreBuilder marshals the
// rebuild onto the UI thread, so it is safe regardless of which
// transformer or goroutine produced the state.
type StoreBuilder[S any] struct {
	core.StatefulBase

	// Source is the container to watch. Required.
	Source StateSource[S]

	// Builder renders the subtree for a state. Required.
	Builder func(ctx core.BuildContext, state S) core.Widget

	// BuildWhen optionally filters rebuilds. When nil, every state change
	// rebuilds. The latest state is retained either way, so the next
	// rebuild always renders current data.
	BuildWhen func(previous, current S) bool
}

func (w StoreBuilder[S]) CreateState() core.State {
	return &storeBuilderState[S]{}
}

type storeBuilderState[S any] struct {
	core.StateBase
	state  S
	unsub  func()
	source StateSource[S]
}

func (s *storeBuilderState[S]) widget() StoreBuilder[S] {
	return s.Element().Widget().(StoreBuilder[S])
}

func (s *storeBuilderState[S]) InitState() {
	w := s.widget()
	s.subscribe(w.Source)
	s.OnDispose(func() {
		if s.unsub != nil {
			s.unsub()
		}
	})
}

func (s *storeBuilderState[S]) subscribe(source StateSource[S]) {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.source = source
	if source == nil {
		return
	}
	s.state = source.State()
	s.unsub = source.Listen(func(next S) {
		drift.Dispatch(func() {
			w := s.widget()
			previous := s.state
			s.state = next
			if w.BuildWhen != nil && !w.BuildWhen(previous, next) {
				return
			}
			s.SetState(nil)
		})
	})
}

func (s *storeBuilderState[S]) DidUpdateWidget(oldWidget core.StatefulWidget) {
	w := s.widget()
	if old, ok := oldWidget.(StoreBuilder[S]); ok && any(old.Source) == any(w.Source) {
		return
	}
	s.subscribe(w.Source)
}

func (s *storeBuilderState[S]) Build(ctx core.BuildContext) core.Widget {
	w := s.widget()
	return w.Builder(ctx, s.state)
}
