// Package tide provides predictable state management for Drift applications.
//
// The package is built around two containers:
//
// Store holds a single state value and publishes it to subscribers whenever
// it changes. Use a Store when state is updated directly by calling Emit.
//
// Bloc maps domain events to state changes. Handlers are registered per
// concrete event type with On, and each incoming event is routed to its
// handler, which emits zero or more new states through an Emitter:
//
//	type CounterEvent interface{ counterEvent() }
//	type Increment struct{}
//	func (Increment) counterEvent() {}
//
//	counter := tide.NewBloc[int, CounterEvent](0)
//	tide.On(counter, func(ctx context.Context, _ Increment, emit tide.Emitter[int]) error {
//	    emit.Emit(counter.State() + 1)
//	    return nil
//	}, tide.WithTransformer(tide.Sequential()))
//
//	counter.Add(Increment{})
//
// # Transformers
//
// How overlapping events of the same type are scheduled is controlled per
// handler by a Transformer: Concurrent (the default), Sequential,
// Restartable, Droppable, or Debounce. Transformers only ever see events
// of their own registration; events of different types interleave freely.
//
// # Observers
//
// A process-wide Observer receives lifecycle notifications (create, event,
// change, transition, error, close) for every container. Install one with
// SetObserver; combine several with CombineObservers. LogObserver is a
// ready-made observer that logs through logrus.
//
// # Threading
//
// All container methods are safe for concurrent use. Handlers run on their
// own goroutines; widget bindings (package binding) marshal state changes
// back onto the UI thread, so application code rarely needs to.
package tide
