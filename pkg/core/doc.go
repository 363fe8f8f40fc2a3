// Package core binds state cells to a component lifecycle.
//
// This package is the thin host that owns component state instances,
// rebuilds the ones whose cells changed and runs cell change callbacks at a
// single stabilization point after the rebuilds. It draws nothing; Build is
// whatever the component wants to do with its current values.
//
// # Component States
//
// Embed StateBase in your state struct:
//
//	type counterState struct {
//	    core.StateBase
//	    count *cell.Cell[int]
//	}
//
//	func (s *counterState) InitState() {
//	    s.count = core.UseSetState(s, 0, func(n int) {
//	        log.Printf("count is now %d", n)
//	    })
//	}
//
//	func (s *counterState) Build() {
//	    fmt.Printf("Count: %d\n", s.count.Value())
//	}
//
// # Stabilization
//
// BuildOwner.Mount runs InitState and the first Build. BuildOwner.FlushBuild
// is the stabilization pass: dirty states rebuild in mount order, then every
// scheduled cell runs its notification step once. Several updates to one
// cell before a flush produce one callback with the final value.
//
// # Hooks
//
// UseSetState, UseSetStateFunc and UseStateCallback create cells bound to
// the state: updates trigger rebuilds, callbacks run on FlushBuild, and
// disposal of the state disposes the cells.
package core
