package core

import "sync"

// stateBase is satisfied by any struct that embeds StateBase.
// Hooks and BuildOwner.Mount accept stateBase so callers can pass s directly.
type stateBase interface {
	state() *StateBase
}

func (s *StateBase) state() *StateBase { return s }

// State is the per-instance state of a mounted component. Implementations
// embed StateBase and override the lifecycle methods they need.
type State interface {
	stateBase
	// InitState runs once when the state is mounted. Create cells here.
	InitState()
	// Build runs after mount and whenever the state was marked dirty.
	Build()
	// Dispose runs when the state is unmounted. Overrides must call
	// s.RunDisposers() or s.StateBase.Dispose().
	Dispose()
}

// StateBase provides common functionality for component states.
// Embed this struct in your state to eliminate boilerplate.
//
// Example:
//
//	type counterState struct {
//	    core.StateBase
//	    count *cell.Cell[int]
//	}
//
//	func (s *counterState) InitState() {
//	    s.count = core.UseSetState(s, 0, nil)
//	}
type StateBase struct {
	owner     *BuildOwner
	self      State
	order     int
	dirty     bool
	mounted   bool
	disposers []func()
	disposed  bool
	mu        sync.Mutex
}

// Owner returns the BuildOwner the state is mounted in, or nil.
func (s *StateBase) Owner() *BuildOwner {
	return s.owner
}

// SetState executes the given function and schedules a rebuild.
// Safe to call even after disposal (becomes a no-op).
//
// SetState is NOT thread-safe. It must only be called from the goroutine
// that runs the BuildOwner. From other goroutines use engine.Runner.Dispatch.
func (s *StateBase) SetState(fn func()) {
	if s.disposed {
		return
	}
	if fn != nil {
		fn()
	}
	s.markNeedsBuild()
}

func (s *StateBase) markNeedsBuild() {
	if s.dirty || !s.mounted || s.owner == nil {
		return
	}
	s.dirty = true
	s.owner.ScheduleBuild(s.self)
}

// OnDispose registers a cleanup function to be called when the state is disposed.
// Returns an unregister function that can be called to remove the disposer.
// The cleanup function will only be called once.
func (s *StateBase) OnDispose(cleanup func()) func() {
	if cleanup == nil {
		return func() {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		// Already disposed, run cleanup immediately
		cleanup()
		return func() {}
	}

	index := len(s.disposers)
	s.disposers = append(s.disposers, cleanup)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.disposers) {
			s.disposers[index] = nil
		}
	}
}

// RunDisposers executes all registered disposers in reverse order.
// This is called automatically by Dispose().
func (s *StateBase) RunDisposers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true
	s.mounted = false

	// LIFO
	for i := len(s.disposers) - 1; i >= 0; i-- {
		if s.disposers[i] != nil {
			s.disposers[i]()
		}
	}
	s.disposers = nil
}

// Dispose cleans up resources. Override this method if you need custom cleanup,
// but always call s.RunDisposers() or s.StateBase.Dispose() in your override.
func (s *StateBase) Dispose() {
	s.RunDisposers()
}

// InitState is a no-op default implementation.
func (s *StateBase) InitState() {}

// Build is a no-op default implementation.
func (s *StateBase) Build() {}

// IsDisposed returns true if this state has been disposed.
func (s *StateBase) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// IsMounted returns true between Mount and Unmount.
func (s *StateBase) IsMounted() bool {
	return s.mounted
}
