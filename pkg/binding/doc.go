// Package binding connects tide containers to the Drift widget tree.
//
// StoreScope makes a container available to a subtree; StoreOf reads it
// back from a BuildContext. StoreBuilder rebuilds a subtree whenever the
// container emits a new state, StoreListener runs a side effect per state,
// and StoreConsumer combines both:
//
//	binding.StoreScope[*tide.Bloc[int, CounterEvent]]{
//	    Create: newCounterBloc,
//	    Child: binding.StoreBuilder[int]{
//	        Source: counter,
//	        Builder: func(ctx core.BuildContext, count int) core.Widget {
//	            return widgets.Text{Content: fmt.Sprintf("%d", count)}
//	        },
//	    },
//	}
//
// All bindings marshal state notifications onto the UI thread with
// drift.Dispatch, so handlers may emit from any goroutine.
package binding
