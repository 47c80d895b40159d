package tide

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// phase tracks the lifecycle of a Bloc.
//
//	constructed ──first Add──► active ──Close──► closing ──settle──► closed
//
// Registration with On is only legal while constructed. In the closing
// phase, in-flight handlers may still emit; once they have all settled the
// bloc is closed and its stream is finalized.
type phase int

const (
	phaseConstructed phase = iota
	phaseActive
	phaseClosing
	phaseClosed
)

func (p phase) String() string {
	switch p {
	case phaseConstructed:
		return "constructed"
	case phaseActive:
		return "active"
	case phaseClosing:
		return "closing"
	case phaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Bloc routes domain events of type E to registered handlers that emit
// states of type S. It embeds the Store contract: State, Listen,
// Subscribe, and the distinct filter all behave as on a Store, with the
// addition that every handler emission produces an observer Transition.
//
// Construct with NewBloc, register handlers with On, then dispatch events
// with Add. All methods are safe for concurrent use.
type Bloc[S, E any] struct {
	store *Store[S]

	mu     sync.Mutex
	phase  phase
	regs   []*registration[S, E]
	adding sync.WaitGroup

	runCtx    context.Context
	cancelRun context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

// NewBloc creates a bloc with the given initial state and notifies the
// observer chain's OnCreate hook. Store options apply to the embedded
// store (e.g. WithOnChange).
func NewBloc[S, E any](initial S, opts ...StoreOption[S]) *Bloc[S, E] {
	b := &Bloc[S, E]{
		store: newStore(initial, opts...),
		phase: phaseConstructed,
		done:  make(chan struct{}),
	}
	b.runCtx, b.cancelRun = context.WithCancel(context.Background())
	currentObserver().OnCreate(b)
	return b
}

// State returns the current state.
func (b *Bloc[S, E]) State() S {
	return b.store.State()
}

// ID returns the unique identity of this bloc instance.
func (b *Bloc[S, E]) ID() uuid.UUID {
	return b.store.id
}

// Label returns a human-readable identity for logs and error reports:
// the name given with WithName, or a type-and-id form.
func (b *Bloc[S, E]) Label() string {
	if b.store.name != "" {
		return b.store.name
	}
	return fmt.Sprintf("%T#%s", b, shortID(b.store.id))
}

// Listen registers fn to be called synchronously with each state change.
// The returned function removes the listener.
func (b *Bloc[S, E]) Listen(fn func(S)) func() {
	return b.store.Listen(fn)
}

// Subscribe returns a subscription to states committed after this call.
func (b *Bloc[S, E]) Subscribe() *Subscription[S] {
	return b.store.Subscribe()
}

// IsClosed reports whether Close has completed.
func (b *Bloc[S, E]) IsClosed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Add dispatches event to its registered handler. Add is fire-and-forget:
// it returns once the event is queued, never blocking on handler
// execution. The observer OnEvent hook fires synchronously at acceptance,
// before the event enters its transformer queue.
//
// An event with no matching registration is dropped and reported as an
// unhandled-event error. After Close has begun, Add is a no-op and the
// attempt is reported through the observer error channel.
func (b *Bloc[S, E]) Add(event E) {
	b.mu.Lock()
	if b.phase >= phaseClosing {
		b.mu.Unlock()
		reportError(b, &Error{Op: "bloc.Add", Kind: KindClosed, Container: b.Label(), Err: ErrClosed})
		return
	}
	if b.phase == phaseConstructed {
		b.startLocked()
	}
	// Holding adding open keeps Close from tearing down the queues while
	// this event is still on its way in.
	b.adding.Add(1)
	b.mu.Unlock()
	defer b.adding.Done()

	reg := b.route(event)
	if reg == nil {
		reportError(b, &Error{
			Op:        "bloc.Add",
			Kind:      KindUnhandled,
			Container: b.Label(),
			Err:       fmt.Errorf("no handler registered for events of type %T", event),
		})
		return
	}
	currentObserver().OnEvent(b, event)
	reg.queue.in <- b.newInvocation(reg, event)
}

// startLocked transitions constructed→active: every registration gets an
// intake queue and a goroutine running its transformer. Callers hold b.mu.
func (b *Bloc[S, E]) startLocked() {
	b.phase = phaseActive
	for _, reg := range b.regs {
		reg.queue = newQueue[*Invocation]()
		go func(reg *registration[S, E]) {
			defer close(reg.settled)
			reg.transformer.Transform(reg.queue.out)
		}(reg)
	}
}

// newInvocation packages one handler execution for event behind the
// Invocation surface the transformers schedule.
func (b *Bloc[S, E]) newInvocation(reg *registration[S, E], event E) *Invocation {
	ctx, cancel := context.WithCancel(b.runCtx)
	em := &blocEmitter[S, E]{bloc: b, event: event}
	iv := &Invocation{done: make(chan struct{})}
	iv.run = func() {
		defer close(iv.done)
		defer cancel()
		if em.inert.Load() {
			// Canceled before it started; the handler never runs.
			return
		}
		b.invoke(ctx, reg, event, em)
		// The invocation is over: emits from goroutines the handler may
		// have leaked are dropped.
		em.retire()
	}
	iv.cancel = func() {
		em.retire()
		cancel()
	}
	return iv
}

// invoke runs the handler for one invocation, isolating its failures:
// a returned error or a recovered panic is reported through the observer
// error channel and terminates only this invocation.
func (b *Bloc[S, E]) invoke(ctx context.Context, reg *registration[S, E], event E, em Emitter[S]) {
	defer func() {
		if r := recover(); r != nil {
			reportError(b, &Error{
				Op:        "bloc.handle",
				Kind:      KindPanic,
				Container: b.Label(),
				Err:       &PanicError{Op: fmt.Sprintf("%T handler", event), Value: r, StackTrace: captureStack()},
			})
		}
	}()
	if err := reg.handle(ctx, event, em); err != nil {
		reportError(b, &Error{Op: "bloc.handle", Kind: KindHandler, Container: b.Label(), Err: err})
	}
}

// emitFromHandler is the pipeline emit path: it records the Transition,
// fires OnTransition before the distinct filter, and commits through the
// embedded store, which fires OnChange and publishes only when the value
// actually changes.
func (b *Bloc[S, E]) emitFromHandler(event E, next S) {
	if b.store.IsClosed() {
		reportError(b, &Error{Op: "bloc.Emit", Kind: KindClosed, Container: b.Label(), Err: ErrClosed})
		return
	}
	currentObserver().OnTransition(b, Transition{Current: b.store.State(), Event: event, Next: next})
	if _, err := b.store.commit(b, next); errors.Is(err, ErrClosed) {
		reportError(b, &Error{Op: "bloc.Emit", Kind: KindClosed, Container: b.Label(), Err: err})
	}
}

// Close stops event intake, waits for all in-flight handler invocations
// to settle, notifies the observer OnClose hook exactly once, and closes
// the state stream. Close is idempotent; every call blocks until teardown
// has completed.
func (b *Bloc[S, E]) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		wasActive := b.phase == phaseActive
		b.phase = phaseClosing
		b.mu.Unlock()

		// Let in-flight Adds finish queueing, then close the intakes.
		// Events already queued are still handed to the transformers;
		// handlers run and may emit until everything has settled.
		b.adding.Wait()
		if wasActive {
			for _, reg := range b.regs {
				close(reg.queue.in)
			}
			for _, reg := range b.regs {
				<-reg.settled
			}
		}
		b.cancelRun()

		b.mu.Lock()
		b.phase = phaseClosed
		b.mu.Unlock()

		b.store.close(b)
		close(b.done)
	})
	<-b.done
	return nil
}
