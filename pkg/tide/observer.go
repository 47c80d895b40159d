package tide

import (
	"fmt"
	"os"
	"sync"
)

// Observer receives lifecycle notifications for every Store and Bloc in
// the process. All hooks are invoked synchronously from the code path that
// triggered them; the container argument is the originating *Store or
// *Bloc.
//
// Hooks are advisory and must not alter control flow. A panic raised by an
// observer propagates to the call site that triggered the hook, with one
// exception: a panic inside OnError itself is absorbed (and written to
// stderr) so error reporting can never recurse.
type Observer interface {
	// OnCreate is called once when a container is constructed.
	OnCreate(container any)
	// OnEvent is called when a Bloc accepts an event, before the event
	// enters its transformer queue.
	OnEvent(container any, event any)
	// OnChange is called for each emission that passes the distinct
	// filter, before the state is swapped.
	OnChange(container any, change Change)
	// OnTransition is called for every emission attempt from an event
	// handler, before the distinct filter runs.
	OnTransition(container any, transition Transition)
	// OnError is called when a container reports an operational error.
	OnError(container any, err error)
	// OnClose is called exactly once when a container closes, before its
	// state stream is finalized.
	OnClose(container any)
}

// BaseObserver is a no-op Observer. Embed it to implement only the hooks
// you care about.
type BaseObserver struct{}

func (BaseObserver) OnCreate(any)                 {}
func (BaseObserver) OnEvent(any, any)             {}
func (BaseObserver) OnChange(any, Change)         {}
func (BaseObserver) OnTransition(any, Transition) {}
func (BaseObserver) OnError(any, error)           {}
func (BaseObserver) OnClose(any)                  {}

var (
	observerMu     sync.RWMutex
	activeObserver Observer = BaseObserver{}
)

// SetObserver installs the process-wide observer. Pass nil to restore the
// default no-op observer. Tests that install an observer should reset it
// when they finish.
func SetObserver(o Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	if o == nil {
		activeObserver = BaseObserver{}
	} else {
		activeObserver = o
	}
}

// currentObserver returns the active observer.
func currentObserver() Observer {
	observerMu.RLock()
	defer observerMu.RUnlock()
	return activeObserver
}

// CombineObservers returns an Observer that forwards every notification to
// each of the given observers, in order.
func CombineObservers(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) OnCreate(container any) {
	for _, o := range m {
		o.OnCreate(container)
	}
}

func (m multiObserver) OnEvent(container any, event any) {
	for _, o := range m {
		o.OnEvent(container, event)
	}
}

func (m multiObserver) OnChange(container any, change Change) {
	for _, o := range m {
		o.OnChange(container, change)
	}
}

func (m multiObserver) OnTransition(container any, transition Transition) {
	for _, o := range m {
		o.OnTransition(container, transition)
	}
}

func (m multiObserver) OnError(container any, err error) {
	for _, o := range m {
		o.OnError(container, err)
	}
}

func (m multiObserver) OnClose(container any) {
	for _, o := range m {
		o.OnClose(container)
	}
}

// reportError delivers err to the active observer's OnError hook. A panic
// raised by the hook is not redelivered through the error channel; it is
// written to stderr instead.
func reportError(container any, err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "[tide] "+(&Error{
				Op:   "observer.OnError",
				Kind: KindObserver,
				Err:  &PanicError{Op: "OnError hook", Value: r},
			}).Error())
		}
	}()
	currentObserver().OnError(container, err)
}
