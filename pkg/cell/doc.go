// Package cell provides a merging state cell: a single value slot with an
// optional change callback.
//
// A Cell stores one value. Updates are either a new value or an updater
// function that receives the current value. When both the current value and
// the candidate are non-nil maps of the same type the candidate is shallow
// merged into a copy of the current map; any other combination replaces the
// value outright.
//
//	c := cell.New(map[string]any{"foo": "bar", "hello": 1}, nil)
//	c.Set(map[string]any{"hello": "goodbye"})
//	c.Value() // map[foo:bar hello:goodbye]
//
// # Change Callbacks
//
// The callback runs at the host's next stabilization point, never inline
// with Set. The first stabilization after creation only records the initial
// value, so the callback sees real updates only:
//
//	c := cell.New(5, func(n int) { fmt.Println("now", n) })
//	c.Stabilize()                            // initial value, no call
//	c.Update(func(n int) int { return n + 7 })
//	c.Stabilize()                            // prints "now 12"
//
// The callback argument is untyped so that hosts can forward whatever their
// callers pass. A value that is not a func(T) is reported once through the
// error handler and notifications stay disabled for the life of the cell.
//
// # Scheduling
//
// A Cell asks its Scheduler to stabilize it on creation and after every
// update. Schedulers are expected to de-duplicate, so several updates
// between two stabilization passes produce a single callback carrying the
// final value. Without a scheduler the owner calls Stabilize directly.
//
// A Cell is not safe for concurrent use. It belongs to one component
// instance and must be mutated from that instance's goroutine.
package cell
