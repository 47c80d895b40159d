package tide

import (
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Invocation is one scheduled handler execution for a single event.
// Transformers receive invocations in event arrival order and decide when,
// or whether, each one runs.
type Invocation struct {
	run    func()
	cancel func()
	done   chan struct{}
}

// Run executes the handler and blocks until it settles. Running a
// canceled invocation settles it immediately without calling the handler.
// Run must be called at most once.
func (iv *Invocation) Run() {
	iv.run()
}

// Cancel retires the invocation: its emitter becomes permanently inert and
// its context is canceled. A handler already running is not preempted; its
// remaining emits are dropped.
func (iv *Invocation) Cancel() {
	iv.cancel()
}

// Done returns a channel closed when the invocation has settled.
func (iv *Invocation) Done() <-chan struct{} {
	return iv.done
}

// Settled reports whether the invocation has finished.
func (iv *Invocation) Settled() bool {
	select {
	case <-iv.done:
		return true
	default:
		return false
	}
}

// Transformer schedules handler invocations for a single event type.
//
// Transform consumes invocations until in is closed and returns only after
// every invocation it started has settled. A transformer never sees events
// of other registrations, so policies compose per event type.
type Transformer interface {
	Transform(in <-chan *Invocation)
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc func(in <-chan *Invocation)

func (f TransformerFunc) Transform(in <-chan *Invocation) {
	f(in)
}

// Concurrent starts every invocation immediately on its own goroutine.
// Completions carry no ordering guarantee. This is the default policy.
func Concurrent() Transformer {
	return TransformerFunc(func(in <-chan *Invocation) {
		var wg sync.WaitGroup
		for iv := range in {
			wg.Add(1)
			go func(iv *Invocation) {
				defer wg.Done()
				iv.Run()
			}(iv)
		}
		wg.Wait()
	})
}

// Sequential runs invocations one at a time in arrival order. The next
// invocation does not start until the previous handler has returned.
func Sequential() Transformer {
	return TransformerFunc(func(in <-chan *Invocation) {
		for iv := range in {
			iv.Run()
		}
	})
}

// Restartable cancels the in-flight invocation when a new one arrives, so
// at most one invocation per event type is active. Emits from a canceled
// handler are dropped.
func Restartable() Transformer {
	return TransformerFunc(func(in <-chan *Invocation) {
		var wg sync.WaitGroup
		var prev *Invocation
		for iv := range in {
			if prev != nil {
				prev.Cancel()
			}
			prev = iv
			wg.Add(1)
			go func(iv *Invocation) {
				defer wg.Done()
				iv.Run()
			}(iv)
		}
		wg.Wait()
	})
}

// Droppable discards events that arrive while an invocation is running.
// The discarded events never reach the handler.
func Droppable() Transformer {
	return TransformerFunc(func(in <-chan *Invocation) {
		sem := semaphore.NewWeighted(1)
		var wg sync.WaitGroup
		for iv := range in {
			if !sem.TryAcquire(1) {
				iv.Cancel()
				continue
			}
			wg.Add(1)
			go func(iv *Invocation) {
				defer wg.Done()
				defer sem.Release(1)
				iv.Run()
			}(iv)
		}
		wg.Wait()
	})
}

// Debounce buffers incoming invocations, keeping only the most recent,
// and hands it to next once no new event has arrived for d. Superseded
// invocations are canceled without running. A pending invocation is
// flushed when the registration closes. A nil next defaults to
// Concurrent, but Debounce is intended to be composed, e.g.
// Debounce(300*time.Millisecond, Restartable()).
func Debounce(d time.Duration, next Transformer) Transformer {
	if next == nil {
		next = Concurrent()
	}
	return TransformerFunc(func(in <-chan *Invocation) {
		out := make(chan *Invocation)
		go func() {
			defer close(out)
			var pending *Invocation
			var timer *time.Timer
			var fire <-chan time.Time
			for {
				select {
				case iv, ok := <-in:
					if !ok {
						if timer != nil {
							timer.Stop()
						}
						if pending != nil {
							out <- pending
						}
						return
					}
					if pending != nil {
						pending.Cancel()
					}
					pending = iv
					if timer != nil {
						timer.Stop()
					}
					timer = time.NewTimer(d)
					fire = timer.C
				case <-fire:
					out <- pending
					pending = nil
					fire = nil
				}
			}
		}()
		next.Transform(out)
	})
}
