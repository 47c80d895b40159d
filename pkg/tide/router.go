package tide

import (
	"context"
	"fmt"
	"reflect"
)

// HandlerOption configures a handler registration.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	transformer Transformer
}

// WithTransformer sets the scheduling policy for the registration's event
// type. The default is Concurrent.
func WithTransformer(t Transformer) HandlerOption {
	return func(o *handlerOptions) {
		o.transformer = t
	}
}

// registration binds one event type to its handler and transformer. The
// set of registrations is immutable once the bloc starts accepting events.
type registration[S, E any] struct {
	typ         reflect.Type
	handle      func(ctx context.Context, event E, emit Emitter[S]) error
	transformer Transformer

	// queue feeds the transformer; created when the bloc activates.
	queue *queue[*Invocation]
	// settled is closed when the transformer has returned.
	settled chan struct{}
}

// On registers handler for events of type T on b. T may be a concrete
// event type or an interface; an interface registration catches every
// event implementing it that has no more specific registration.
//
// On must be called during bloc construction, before the first Add.
// Registering the same type twice, or registering after the bloc has
// started accepting events, is a programmer error and panics.
func On[S, E, T any](b *Bloc[S, E], handler func(ctx context.Context, event T, emit Emitter[S]) error, opts ...HandlerOption) {
	options := handlerOptions{transformer: Concurrent()}
	for _, opt := range opts {
		opt(&options)
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	wrapped := func(ctx context.Context, event E, emit Emitter[S]) error {
		return handler(ctx, any(event).(T), emit)
	}
	if err := b.register(typ, wrapped, options.transformer); err != nil {
		panic(err)
	}
}

// register validates and records a handler registration.
func (b *Bloc[S, E]) register(typ reflect.Type, handle func(ctx context.Context, event E, emit Emitter[S]) error, t Transformer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.phase != phaseConstructed {
		return fmt.Errorf("tide: handler for %v registered after the bloc started accepting events", typ)
	}
	for _, reg := range b.regs {
		if reg.typ == typ {
			return fmt.Errorf("tide: handler already registered for events of type %v", typ)
		}
	}
	b.regs = append(b.regs, &registration[S, E]{
		typ:         typ,
		handle:      handle,
		transformer: t,
		settled:     make(chan struct{}),
	})
	return nil
}

// route finds the registration for event's most specific type: an exact
// concrete-type match wins; otherwise the narrowest registered interface
// the event implements. route returns nil when nothing matches.
func (b *Bloc[S, E]) route(event E) *registration[S, E] {
	t := reflect.TypeOf(event)
	if t == nil {
		return nil
	}
	var best *registration[S, E]
	for _, reg := range b.regs {
		if reg.typ == t {
			return reg
		}
		if reg.typ.Kind() != reflect.Interface || !t.Implements(reg.typ) {
			continue
		}
		if best == nil || narrowerInterface(reg.typ, best.typ) {
			best = reg
		}
	}
	return best
}

// narrowerInterface reports whether interface a is more specific than
// interface b: everything satisfying a satisfies b, but not vice versa.
func narrowerInterface(a, b reflect.Type) bool {
	return a.Implements(b) && !b.Implements(a)
}
