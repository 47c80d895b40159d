package tide

import "sync/atomic"

// Emitter publishes states on behalf of one handler invocation. It is
// valid only for the duration of that invocation: once the invocation is
// canceled, completes, or the owning bloc closes, Emit becomes a no-op.
type Emitter[S any] interface {
	// Emit records a transition to state and publishes it if it differs
	// from the current state. Emits from a canceled invocation are
	// silently dropped; emits after the bloc closed are dropped and
	// reported to the observer chain.
	Emit(state S)
	// Done reports whether the emitter has been retired and further
	// emits will be dropped. Handlers with long async bodies can check
	// Done (or the invocation context) to stop work early.
	Done() bool
}

// blocEmitter is the Emitter bound to one handler invocation of a Bloc.
type blocEmitter[S, E any] struct {
	bloc  *Bloc[S, E]
	event E
	inert atomic.Bool
}

func (e *blocEmitter[S, E]) Emit(state S) {
	if e.inert.Load() {
		return
	}
	e.bloc.emitFromHandler(e.event, state)
}

func (e *blocEmitter[S, E]) Done() bool {
	return e.inert.Load() || e.bloc.store.IsClosed()
}

// retire makes the emitter permanently inert.
func (e *blocEmitter[S, E]) retire() {
	e.inert.Store(true)
}
