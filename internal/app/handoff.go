package app

import (
	"errors"
	"sync"
)

// ErrBusy is returned when a background task is started while another one
// still owns the handoff.
var ErrBusy = errors.New("background task already in flight")

// Handoff passes the result of one background task to the interactive
// loop. A single producer writes exactly one result; the consumer polls for
// it without blocking.
type Handoff[T any] struct {
	mu      sync.Mutex
	running bool
	ready   bool
	value   T
	err     error
}

// Start runs fn on a new goroutine. It fails with ErrBusy while a previous
// task is running or its result has not been collected.
func (h *Handoff[T]) Start(fn func() (T, error)) error {
	h.mu.Lock()
	if h.running || h.ready {
		h.mu.Unlock()
		return ErrBusy
	}
	h.running = true
	h.mu.Unlock()

	go func() {
		v, err := fn()
		h.mu.Lock()
		h.value, h.err = v, err
		h.running = false
		h.ready = true
		h.mu.Unlock()
	}()
	return nil
}

// Poll returns the result once it is available and frees the handoff for the
// next task. ok is false while the task is still running or none was started.
func (h *Handoff[T]) Poll() (value T, ok bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ready {
		return value, false, nil
	}
	value, err = h.value, h.err
	var zero T
	h.value, h.err, h.ready = zero, nil, false
	return value, true, err
}

// Busy reports whether a task is running or its result is uncollected.
func (h *Handoff[T]) Busy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running || h.ready
}
