package testing

import (
	"sync"

	"github.com/google/go-cmp/cmp"
)

// Recorder records the arguments of every call made through the functions
// it hands out. Use it as a change callback spy or to wrap an updater.
type Recorder[T any] struct {
	mu    sync.Mutex
	calls []T
}

// NewRecorder returns an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Func returns a callback that records its argument.
func (r *Recorder[T]) Func() func(T) {
	return r.record
}

// Wrap returns an updater that records its argument and then applies fn.
func (r *Recorder[T]) Wrap(fn func(T) T) func(T) T {
	return func(v T) T {
		r.record(v)
		return fn(v)
	}
}

func (r *Recorder[T]) record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, v)
}

// Calls returns the recorded arguments in call order.
func (r *Recorder[T]) Calls() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.calls...)
}

// Count returns the number of calls.
func (r *Recorder[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Last returns the most recent argument.
func (r *Recorder[T]) Last() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		var zero T
		return zero, false
	}
	return r.calls[len(r.calls)-1], true
}

// CalledWith reports whether any call received a value deep-equal to v.
func (r *Recorder[T]) CalledWith(v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.calls {
		if cmp.Equal(c, v) {
			return true
		}
	}
	return false
}
