package cell

import (
	"fmt"

	"github.com/go-drift/setstate/pkg/errors"
)

// Stabilizer is implemented by anything with deferred post-update work.
type Stabilizer interface {
	// Stabilize runs the pending work. It is called by the host at its next
	// stabilization point.
	Stabilize()
	// Cancel is called instead of Stabilize when the host drops the pending
	// work without running it.
	Cancel()
}

// Scheduler defers a Stabilizer to the host's next stabilization point.
// Implementations should run each scheduled Stabilizer once per pass even
// if it was scheduled several times.
type Scheduler interface {
	Schedule(s Stabilizer)
}

// SetFunc is the setter half of the conventional (value, setter) pair.
// It accepts either a value of the cell's type or a func(T) T updater.
type SetFunc[T any] func(next any)

// Cell holds a single value with merge-on-update semantics and an optional
// change callback.
type Cell[T any] struct {
	value    T
	notified T
	callback func(T)

	hasRun    bool
	scheduled bool
	disposed  bool

	merge     bool
	name      string
	scheduler Scheduler
	handler   errors.ErrorHandler
	onUpdate  func()
}

// New creates a cell holding initial.
//
// callback may be nil, a func(T), or any func type convertible to func(T).
// Any other value is reported once as a configuration error and the cell
// never notifies.
func New[T any](initial T, callback any, opts ...Option) *Cell[T] {
	return newCell(initial, callback, opts)
}

// NewFunc creates a cell whose initial value is produced by init. init is
// called exactly once, before NewFunc returns. A nil init yields the zero value.
func NewFunc[T any](init func() T, callback any, opts ...Option) *Cell[T] {
	var initial T
	if init != nil {
		initial = init()
	}
	return newCell(initial, callback, opts)
}

func newCell[T any](initial T, callback any, opts []Option) *Cell[T] {
	cfg := config{merge: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Cell[T]{
		value:     initial,
		merge:     cfg.merge,
		name:      cfg.name,
		scheduler: cfg.scheduler,
		handler:   cfg.handler,
		onUpdate:  cfg.onUpdate,
	}

	fn, ok := callbackFunc[T](callback)
	if !ok {
		errors.ReportTo(c.handler, &errors.SetStateError{
			Op:   "cell.New",
			Kind: errors.KindConfig,
			Cell: c.name,
			Err:  &errors.CallbackTypeError{Type: fmt.Sprintf("%T", callback)},
		})
	}
	c.callback = fn

	// The initial value counts as a cycle; its stabilization only sets hasRun.
	c.schedule()
	return c
}

// Name returns the diagnostic name of the cell.
func (c *Cell[T]) Name() string {
	return c.name
}

// Value returns the current value.
func (c *Cell[T]) Value() T {
	return c.value
}

// Pending reports whether an update is waiting for stabilization.
func (c *Cell[T]) Pending() bool {
	return c.scheduled
}

// Set replaces or merges next into the current value. A function is never
// stored: if next is a func(T) T, or any unary function that accepts the
// current value and returns something assignable to T, it is applied as an
// updater. Other functions panic with an *errors.ArgumentError.
func (c *Cell[T]) Set(next T) {
	c.set("cell.Set", next)
}

func (c *Cell[T]) set(op string, next T) {
	if fn, ok := any(next).(func(T) T); ok {
		c.Update(fn)
		return
	}
	if fn, ok := funcUpdater[T](op, next); ok {
		c.Update(fn)
		return
	}
	c.apply(next)
}

// Update applies fn to the current value and stores the result under the
// same merge rule as Set. A panic in fn propagates and leaves the cell
// untouched. A nil fn is ignored.
func (c *Cell[T]) Update(fn func(T) T) {
	if fn == nil || c.disposed {
		return
	}
	c.apply(fn(c.value))
}

// Dispatch is the dynamically typed form of Set and Update. next may be a
// func(T) T, a T, or nil (the zero value). Functions follow the Set rules.
// Any other type panics with an *errors.ArgumentError.
func (c *Cell[T]) Dispatch(next any) {
	switch v := next.(type) {
	case func(T) T:
		c.Update(v)
	case nil:
		var zero T
		c.apply(zero)
	case T:
		c.set("cell.Dispatch", v)
	default:
		panic(&errors.ArgumentError{
			Op:   "cell.Dispatch",
			Want: typeName[T](),
			Got:  next,
		})
	}
}

// Pair returns the current value and a setter bound to the cell.
func (c *Cell[T]) Pair() (T, SetFunc[T]) {
	return c.value, c.Dispatch
}

func (c *Cell[T]) apply(candidate T) {
	if c.disposed {
		return
	}
	if c.merge {
		candidate = mergeValues(c.value, candidate)
	}
	c.value = candidate
	if c.onUpdate != nil {
		c.onUpdate()
	}
	c.schedule()
}

func (c *Cell[T]) schedule() {
	c.scheduled = true
	if c.scheduler != nil {
		c.scheduler.Schedule(c)
	}
}

// Stabilize runs the change notification step. The first call after
// creation only marks the cell as having run. Later calls invoke the
// callback once with the current value if it differs from the value seen
// by the previous call.
func (c *Cell[T]) Stabilize() {
	c.scheduled = false
	if c.disposed || c.callback == nil {
		return
	}
	if !c.hasRun {
		c.hasRun = true
		c.notified = c.value
		return
	}
	if sameValue(c.notified, c.value) {
		return
	}
	c.notified = c.value
	c.callback(c.value)
}

// Cancel drops a pending stabilization without running it. The next
// update schedules the cell again.
func (c *Cell[T]) Cancel() {
	c.scheduled = false
}

// Dispose discards pending notifications. Later updates and
// stabilizations are no-ops.
func (c *Cell[T]) Dispose() {
	c.disposed = true
	c.scheduled = false
}

// Disposed reports whether Dispose has been called.
func (c *Cell[T]) Disposed() bool {
	return c.disposed
}
