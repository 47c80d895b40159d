package main

import (
	"context"
	"fmt"

	"github.com/go-drift/drift/pkg/core"
	"github.com/go-drift/drift/pkg/theme"
	"github.com/go-drift/drift/pkg/widgets"
	"github.com/go-drift/tide/pkg/binding"
	"github.com/go-drift/tide/pkg/tide"
)

// CounterEvent is the event family handled by the counter bloc.
type CounterEvent interface{ counterEvent() }

// Increment raises the count by one.
type Increment struct{}

func (Increment) counterEvent() {}

// Decrement lowers the count by one.
type Decrement struct{}

func (Decrement) counterEvent() {}

// NewCounterBloc builds the counter. Both handlers run sequentially, so
// rapid taps are applied strictly in arrival order.
func NewCounterBloc() *tide.Bloc[int, CounterEvent] {
	b := tide.NewBloc[int, CounterEvent](0)
	tide.On(b, func(ctx context.Context, _ Increment, emit tide.Emitter[int]) error {
		emit.Emit(b.State() + 1)
		return nil
	}, tide.WithTransformer(tide.Sequential()))
	tide.On(b, func(ctx context.Context, _ Decrement, emit tide.Emitter[int]) error {
		emit.Emit(b.State() - 1)
		return nil
	}, tide.WithTransformer(tide.Sequential()))
	return b
}

// CounterScreen shows the current count with increment and decrement
// buttons. The screen owns its bloc and closes it on dispose.
type CounterScreen struct {
	core.StatefulBase
}

func (CounterScreen) CreateState() core.State { return &counterScreenState{} }

type counterScreenState struct {
	core.StateBase
	counter *tide.Bloc[int, CounterEvent]
}

func (s *counterScreenState) InitState() {
	s.counter = NewCounterBloc()
	s.OnDispose(func() { _ = s.counter.Close() })
}

func (s *counterScreenState) Build(ctx core.BuildContext) core.Widget {
	return widgets.Column{
		CrossAxisAlignment: widgets.CrossAxisAlignmentCenter,
		Children: []core.Widget{
			binding.StoreBuilder[int]{
				Source: s.counter,
				Builder: func(ctx core.BuildContext, count int) core.Widget {
					return widgets.Text{Content: fmt.Sprintf("Count: %d", count)}
				},
			},
			widgets.SizedBox{Height: 12},
			widgets.Row{
				MainAxisAlignment: widgets.MainAxisAlignmentCenter,
				Children: []core.Widget{
					theme.ButtonOf(ctx, "-", func() { s.counter.Add(Decrement{}) }),
					widgets.SizedBox{Width: 12},
					theme.ButtonOf(ctx, "+", func() { s.counter.Add(Increment{}) }),
				},
			},
		},
	}
}
