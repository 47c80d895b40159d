package tide

import "sync"

// queue pumps values through an unbounded buffer so publishers never block
// on slow consumers. Values sent on in are delivered on out in order.
// Closing in drains the buffer to out and then closes out; closing done
// abandons the buffer and closes out immediately.
type queue[T any] struct {
	in   chan T
	out  chan T
	done chan struct{}
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{
		in:   make(chan T),
		out:  make(chan T),
		done: make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *queue[T]) pump() {
	var buf []T
	in := q.in
	for in != nil || len(buf) > 0 {
		var out chan T
		var next T
		if len(buf) > 0 {
			out = q.out
			next = buf[0]
		}
		select {
		case v, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			buf = append(buf, v)
		case out <- next:
			buf = buf[1:]
		case <-q.done:
			close(q.out)
			return
		}
	}
	close(q.out)
}

// Subscription is one subscriber's view of a container's broadcast state
// stream. Each subscription observes every state committed after it was
// created; history is not replayed. Values are buffered per subscription,
// so a slow consumer never blocks the container or other subscribers.
type Subscription[S any] struct {
	q      *queue[S]
	remove func()
	once   sync.Once
}

// Values returns the channel of state values. The channel is closed after
// the container closes (once buffered values are drained) or the
// subscription is canceled.
func (s *Subscription[S]) Values() <-chan S {
	return s.q.out
}

// Cancel stops delivery and releases the subscription. Buffered values
// not yet consumed are discarded. Cancel is idempotent.
func (s *Subscription[S]) Cancel() {
	s.once.Do(func() {
		s.remove()
		close(s.q.done)
	})
}
