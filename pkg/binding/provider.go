package binding

import (
	"io"
	"reflect"

	"github.com/go-drift/drift/pkg/core"
)

// StoreScope makes a tide container of type T available to descendant
// widgets via [StoreOf]. T is typically a pointer type such as
// *tide.Bloc[S, E] or *tide.Store[S].
//
// Ownership follows who built the container: a scope given a Create
// function owns the container and closes it when the scope is disposed;
// a scope given a Store value does not close it.
type StoreScope[T any] struct {
	core.StatefulBase

	// Store is an existing container to expose. The scope does not close
	// it. Ignored when Create is set.
	Store T

	// Create builds the container when the scope mounts. The scope closes
	// it on dispose.
	Create func() T

	// Child is the subtree with access to the container.
	Child core.Widget
}

func (s StoreScope[T]) CreateState() core.State {
	return &storeScopeState[T]{}
}

type storeScopeState[T any] struct {
	core.StateBase
	store T
	owned bool
}

func (s *storeScopeState[T]) InitState() {
	w := s.Element().Widget().(StoreScope[T])
	if w.Create != nil {
		s.store = w.Create()
		s.owned = true
		return
	}
	s.store = w.Store
}

func (s *storeScopeState[T]) Build(ctx core.BuildContext) core.Widget {
	w := s.Element().Widget().(StoreScope[T])
	return storeInherited[T]{store: s.store, child: w.Child}
}

func (s *storeScopeState[T]) Dispose() {
	if s.owned {
		if closer, ok := any(s.store).(io.Closer); ok {
			_ = closer.Close()
		}
	}
	s.StateBase.Dispose()
}

// storeInherited is the inherited widget that carries the container down
// the tree. Its reflect type is distinct per T, so nested scopes of
// different container types do not shadow each other.
type storeInherited[T any] struct {
	core.InheritedBase
	store T
	child core.Widget
}

func (w storeInherited[T]) ChildWidget() core.Widget {
	return w.child
}

func (w storeInherited[T]) UpdateShouldNotify(old core.InheritedWidget) bool {
	o, ok := old.(storeInherited[T])
	if !ok {
		return true
	}
	return any(o.store) != any(w.store)
}

// StoreOf returns the nearest container of type T provided by an ancestor
// [StoreScope]. The second result is false when no scope of that type is
// in the ancestry.
func StoreOf[T any](ctx core.BuildContext) (T, bool) {
	var zero T
	inherited := ctx.DependOnInherited(reflect.TypeOf(storeInherited[T]{}), nil)
	if inherited == nil {
		return zero, false
	}
	scope, ok := inherited.(storeInherited[T])
	if !ok {
		return zero, false
	}
	return scope.store, true
}
