package binding

import "github.com/go-drift/drift/pkg/core"

// StoreConsumer combines [StoreBuilder] and [StoreListener] over one
// source: Builder rebuilds the subtree and OnState runs as a side effect,
// each with its own optional filter.
type StoreConsumer[S any] struct {
	core.StatelessBase

	// Source is the container to watch. Required.
	Source StateSource[S]

	// Builder renders the subtree for a state. Required.
	Builder func(ctx core.BuildContext, state S) core.Widget

	// BuildWhen optionally filters rebuilds.
	BuildWhen func(previous, current S) bool

	// OnState is called on the UI thread for each state change.
	OnState func(state S)

	// ListenWhen optionally filters OnState notifications.
	ListenWhen func(previous, current S) bool
}

func (w StoreConsumer[S]) Build(ctx core.BuildContext) core.Widget {
	return StoreListener[S]{
		Source:     w.Source,
		OnState:    w.OnState,
		ListenWhen: w.ListenWhen,
		Child: StoreBuilder[S]{
			Source:    w.Source,
			Builder:   w.Builder,
			BuildWhen: w.BuildWhen,
		},
	}
}
