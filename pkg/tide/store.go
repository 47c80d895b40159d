package tide

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Equaler lets a state type define value equality for the distinct filter.
// States that do not implement Equaler are compared with reflect.DeepEqual.
type Equaler interface {
	Equal(other any) bool
}

// statesEqual implements the distinct filter's value comparison.
func statesEqual[S any](a, b S) bool {
	if eq, ok := any(a).(Equaler); ok {
		return eq.Equal(any(b))
	}
	return reflect.DeepEqual(a, b)
}

// StoreOption configures a Store (or the Store embedded in a Bloc) at
// construction time.
type StoreOption[S any] func(*Store[S])

// WithName gives the container an explicit name, used as its Label in
// observer logs and error reports instead of the default type-and-id
// form.
func WithName[S any](name string) StoreOption[S] {
	return func(s *Store[S]) {
		s.name = name
	}
}

// WithOnChange installs a hook invoked with the outgoing and incoming
// state for each emission that passes the distinct filter, before the
// state is swapped. A panic raised by the hook is reported through the
// observer error channel; it does not reach the emit caller and does not
// prevent the swap.
func WithOnChange[S any](fn func(current, next S)) StoreOption[S] {
	return func(s *Store[S]) {
		s.onChange = fn
	}
}

// Store holds a single state value and broadcasts changes to subscribers.
//
// The current state is always readable synchronously with State. Emit
// replaces it, subject to the distinct filter: emitting a value equal to
// the current state publishes nothing. Close permanently stops the store.
//
// All methods are safe for concurrent use. Listeners registered with
// Listen are invoked synchronously on the emitting goroutine and must not
// call Emit or Close from within the callback.
type Store[S any] struct {
	id       uuid.UUID
	name     string
	onChange func(current, next S)

	// emitMu serializes commits so the compare-and-swap against the
	// current state and the publication order are consistent.
	emitMu sync.Mutex

	mu           sync.Mutex
	state        S
	closed       bool
	listeners    map[int]func(S)
	nextListener int
	subs         map[int]*queue[S]
	nextSub      int
}

// NewStore creates a store holding initial and notifies the observer
// chain's OnCreate hook.
func NewStore[S any](initial S, opts ...StoreOption[S]) *Store[S] {
	s := newStore(initial, opts...)
	currentObserver().OnCreate(s)
	return s
}

// newStore constructs a store without firing OnCreate. Bloc uses it so a
// bloc construction produces a single OnCreate for the bloc itself.
func newStore[S any](initial S, opts ...StoreOption[S]) *Store[S] {
	s := &Store[S]{
		id:        uuid.New(),
		state:     initial,
		listeners: make(map[int]func(S)),
		subs:      make(map[int]*queue[S]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the unique identity of this store instance.
func (s *Store[S]) ID() uuid.UUID {
	return s.id
}

// Label returns a human-readable identity for logs and error reports:
// the name given with WithName, or a type-and-id form.
func (s *Store[S]) Label() string {
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("%T#%s", s, shortID(s.id))
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// IsClosed reports whether the store has been closed.
func (s *Store[S]) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Emit replaces the current state with next. If next is value-equal to
// the current state, nothing is published. After Close, Emit returns
// ErrClosed and the violation is also reported to the observer chain.
func (s *Store[S]) Emit(next S) error {
	_, err := s.commit(s, next)
	if errors.Is(err, ErrClosed) {
		reportError(s, &Error{Op: "store.Emit", Kind: KindClosed, Container: s.Label(), Err: err})
	}
	return err
}

// commit runs the distinct filter and, when the state actually changes,
// notifies the change hooks, swaps the state, and publishes to listeners
// and subscriptions. subject is the observer-facing container: the Bloc
// when called from the event pipeline, the Store itself otherwise.
func (s *Store[S]) commit(subject any, next S) (changed bool, err error) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	current := s.state
	s.mu.Unlock()

	if statesEqual(current, next) {
		return false, nil
	}

	// Hooks observe old and new together before the swap.
	s.notifyChange(subject, current, next)

	s.mu.Lock()
	if s.closed {
		// Closed while the hooks ran.
		s.mu.Unlock()
		return false, ErrClosed
	}
	s.state = next
	for _, q := range s.subs {
		q.in <- next
	}
	listeners := make([]func(S), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return true, nil
}

// notifyChange runs the construction-time onChange hook and the observer
// OnChange hook. A panic from the onChange hook goes to the error channel,
// not the emit caller. Observer panics propagate.
func (s *Store[S]) notifyChange(subject any, current, next S) {
	if s.onChange != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					reportError(subject, &Error{
						Op:        "store.OnChange",
						Kind:      KindPanic,
						Container: s.Label(),
						Err:       &PanicError{Op: "onChange hook", Value: r, StackTrace: captureStack()},
					})
				}
			}()
			s.onChange(current, next)
		}()
	}
	currentObserver().OnChange(subject, Change{Current: current, Next: next})
}

// Listen registers fn to be called synchronously with each state that
// passes the distinct filter. The returned function removes the listener.
func (s *Store[S]) Listen(fn func(S)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Subscribe returns a subscription to states committed after this call.
// The stream is broadcast: every subscription observes every subsequent
// state. Subscribing to a closed store returns a subscription whose
// channel is already closed.
func (s *Store[S]) Subscribe() *Subscription[S] {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		q := &queue[S]{out: make(chan S), done: make(chan struct{})}
		close(q.out)
		return &Subscription[S]{q: q, remove: func() {}}
	}
	q := newQueue[S]()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = q
	s.mu.Unlock()

	return &Subscription[S]{
		q: q,
		remove: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if qq, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(qq.in)
			}
		},
	}
}

// Close permanently closes the store. Pending subscription buffers are
// drained to their consumers and the value channels are then closed. Close
// is idempotent: only the first call notifies the observer OnClose hook.
func (s *Store[S]) Close() error {
	return s.close(s)
}

// close implements Close with an explicit observer subject, so a Bloc can
// close its embedded store while observers see the bloc.
func (s *Store[S]) close(subject any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.listeners = nil
	s.mu.Unlock()

	currentObserver().OnClose(subject)
	for _, q := range subs {
		close(q.in)
	}
	return nil
}
