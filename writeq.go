package greetcount

import (
	"context"
	"sync"
)

// writeQueue runs writes in the background while keeping them ordered per key.
// A write for a key starts only after the previous write for that key
// finished, and wait blocks readers until the last issued write is applied.
type writeQueue struct {
	mu     sync.Mutex
	tail   map[string]chan struct{}
	closed bool
	wg     sync.WaitGroup
}

func newWriteQueue() *writeQueue {
	return &writeQueue{tail: make(map[string]chan struct{})}
}

// enqueue schedules fn for key. Returns false once the queue is closed.
func (q *writeQueue) enqueue(key string, fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	prev := q.tail[key]
	done := make(chan struct{})
	q.tail[key] = done
	q.wg.Add(1)
	q.mu.Unlock()

	go func() {
		defer q.wg.Done()
		if prev != nil {
			<-prev
		}
		fn()

		q.mu.Lock()
		if q.tail[key] == done {
			delete(q.tail, key)
		}
		q.mu.Unlock()
		close(done)
	}()
	return true
}

// wait blocks until every write issued so far for key has run.
func (q *writeQueue) wait(ctx context.Context, key string) error {
	q.mu.Lock()
	last := q.tail[key]
	q.mu.Unlock()
	if last == nil {
		return nil
	}
	select {
	case <-last:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close rejects new writes and waits for pending ones.
func (q *writeQueue) close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
