package tide

import "fmt"

// Change pairs the state being replaced with its replacement. Observers
// receive a Change for every emission that survives the distinct filter,
// before the new state is committed.
type Change struct {
	Current any
	Next    any
}

func (c Change) String() string {
	return fmt.Sprintf("Change(current: %v, next: %v)", c.Current, c.Next)
}

// Transition is a Change plus the event that caused it. Observers receive
// a Transition for every emission attempt from an event handler, including
// attempts discarded by the distinct filter. Only event-accepting
// containers (Bloc) produce transitions.
type Transition struct {
	Current any
	Event   any
	Next    any
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition(current: %v, event: %T, next: %v)", t.Current, t.Event, t.Next)
}
