package core

import "github.com/go-drift/setstate/pkg/cell"

// UseSetState creates a merging state cell owned by s. Updates mark s for
// rebuild, the change callback runs during the owner's stabilization pass,
// and the cell is disposed with s. Call this once in InitState(), not in Build().
//
// callback follows cell.New: nil, a func(T), or a func type convertible to
// it. Anything else is reported once and disables notifications.
//
// Example:
//
//	type titleState struct {
//	    core.StateBase
//	    count *cell.Cell[int]
//	}
//
//	func (s *titleState) InitState() {
//	    s.count = core.UseSetState(s, 0, func(n int) {
//	        fmt.Printf("\033]0;%d\007", n)
//	    })
//	}
func UseSetState[T any](s stateBase, initial T, callback any, opts ...cell.Option) *cell.Cell[T] {
	return bindCell(s, func(o []cell.Option) *cell.Cell[T] {
		return cell.New(initial, callback, o...)
	}, opts)
}

// UseSetStateFunc is like UseSetState but computes the initial value with
// init, which runs exactly once regardless of how often s rebuilds.
func UseSetStateFunc[T any](s stateBase, init func() T, callback any, opts ...cell.Option) *cell.Cell[T] {
	return bindCell(s, func(o []cell.Option) *cell.Cell[T] {
		return cell.NewFunc(init, callback, o...)
	}, opts)
}

// UseStateCallback creates a replace-only cell: updates never merge, but
// the callback still skips the initial value.
func UseStateCallback[T any](s stateBase, initial T, callback func(T), opts ...cell.Option) *cell.Cell[T] {
	opts = append(opts, cell.WithoutMerge())
	return bindCell(s, func(o []cell.Option) *cell.Cell[T] {
		return cell.New(initial, callback, o...)
	}, opts)
}

func bindCell[T any](s stateBase, create func([]cell.Option) *cell.Cell[T], opts []cell.Option) *cell.Cell[T] {
	base := s.state()
	bound := []cell.Option{cell.WithOnUpdate(func() { base.SetState(nil) })}
	if base.owner != nil {
		bound = append(bound, cell.WithScheduler(base.owner))
	}
	c := create(append(bound, opts...))
	base.OnDispose(c.Dispose)
	return c
}
