package binding

import (
	"github.com/go-drift/drift/pkg/core"
	"github.com/go-drift/drift/pkg/drift"
)

// StoreListener invokes OnState once per state change, on the UI thread,
// without rebuilding its subtree. Use it for side effects that should run
// once per change: navigation, snackbars, haptics.
type StoreListener[S any] struct {
	core.StatefulBase

	// Source is the container to watch. Required.
	Source StateSource[S]

	// OnState is called on the UI thread for each state that passes
	// ListenWhen. Required.
	OnState func(state S)

	// ListenWhen optionally filters notifications. When nil, every state
	// change notifies.
	ListenWhen func(previous, current S) bool

	// Child is rendered unchanged.
	Child core.Widget
}

func (w StoreListener[S]) CreateState() core.State {
	return &storeListenerState[S]{}
}

type storeListenerState[S any] struct {
	core.StateBase
	previous S
	unsub    func()
	source   StateSource[S]
}

func (s *storeListenerState[S]) widget() StoreListener[S] {
	return s.Element().Widget().(StoreListener[S])
}

func (s *storeListenerState[S]) InitState() {
	w := s.widget()
	s.subscribe(w.Source)
	s.OnDispose(func() {
		if s.unsub != nil {
			s.unsub()
		}
	})
}

func (s *storeListenerState[S]) subscribe(source StateSource[S]) {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.source = source
	if source == nil {
		return
	}
	s.previous = source.State()
	s.unsub = source.Listen(func(next S) {
		drift.Dispatch(func() {
			w := s.widget()
			previous := s.previous
			s.previous = next
			if w.ListenWhen != nil && !w.ListenWhen(previous, next) {
				return
			}
			if w.OnState != nil {
				w.OnState(next)
			}
		})
	})
}

func (s *storeListenerState[S]) DidUpdateWidget(oldWidget core.StatefulWidget) {
	w := s.widget()
	if old, ok := oldWidget.(StoreListener[S]); ok && any(old.Source) == any(w.Source) {
		return
	}
	s.subscribe(w.Source)
}

func (s *storeListenerState[S]) Build(ctx core.BuildContext) core.Widget {
	return s.widget().Child
}
