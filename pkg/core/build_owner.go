package core

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-drift/setstate/pkg/cell"
	"github.com/go-drift/setstate/pkg/errors"
)

// maxFlushPasses bounds FlushBuild when change callbacks keep updating cells.
const maxFlushPasses = 64

// BuildOwner tracks mounted states that need rebuilding and the cells
// waiting for their stabilization step. FlushBuild is the stabilization pass.
type BuildOwner struct {
	dirty     []State
	dirtySet  map[State]bool
	pending   []cell.Stabilizer
	pendSet   map[cell.Stabilizer]bool
	nextOrder int
	mu        sync.Mutex

	// OnNeedsFrame is called when new work is scheduled, signalling the
	// run loop that a stabilization pass should happen.
	OnNeedsFrame func()
}

// NewBuildOwner creates a new BuildOwner.
func NewBuildOwner() *BuildOwner {
	return &BuildOwner{}
}

// Mount attaches s to the owner, runs InitState and the first Build.
// Cells created in InitState are stabilized by the next FlushBuild.
func (b *BuildOwner) Mount(s State) {
	base := s.state()
	if base.mounted {
		return
	}
	base.owner = b
	base.self = s
	b.mu.Lock()
	base.order = b.nextOrder
	b.nextOrder++
	b.mu.Unlock()

	s.InitState()
	base.mounted = true
	b.rebuild(s)
}

// Unmount disposes s. Pending rebuilds and notifications of s are dropped.
func (b *BuildOwner) Unmount(s State) {
	if s.state().owner != b {
		return
	}
	s.Dispose()
}

// ScheduleBuild marks a state as needing rebuild.
func (b *BuildOwner) ScheduleBuild(s State) {
	added := func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.dirtySet[s] {
			return false
		}
		if b.dirtySet == nil {
			b.dirtySet = make(map[State]bool)
		}
		b.dirtySet[s] = true
		b.dirty = append(b.dirty, s)
		return true
	}()

	if added && b.OnNeedsFrame != nil {
		b.OnNeedsFrame()
	}
}

// Schedule queues st for the next stabilization pass. Scheduling the same
// Stabilizer again before the pass runs is a no-op.
func (b *BuildOwner) Schedule(st cell.Stabilizer) {
	added := func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.pendSet[st] {
			return false
		}
		if b.pendSet == nil {
			b.pendSet = make(map[cell.Stabilizer]bool)
		}
		b.pendSet[st] = true
		b.pending = append(b.pending, st)
		return true
	}()

	if added && b.OnNeedsFrame != nil {
		b.OnNeedsFrame()
	}
}

// NeedsWork returns true if there are dirty states or pending stabilizers.
func (b *BuildOwner) NeedsWork() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.dirty) > 0 || len(b.pending) > 0
}

// FlushBuild rebuilds dirty states in mount order, then runs pending
// stabilizers in the order they were first scheduled. Work scheduled along
// the way is handled in further passes until the owner is quiet.
func (b *BuildOwner) FlushBuild() {
	for pass := 0; ; pass++ {
		b.mu.Lock()
		if len(b.dirty) == 0 && len(b.pending) == 0 {
			b.mu.Unlock()
			return
		}
		if pass == maxFlushPasses {
			dropped := len(b.dirty) + len(b.pending)
			for _, s := range b.dirty {
				s.state().dirty = false
			}
			cancelled := b.pending
			b.dirty, b.pending = nil, nil
			clear(b.dirtySet)
			clear(b.pendSet)
			b.mu.Unlock()
			for _, st := range cancelled {
				st.Cancel()
			}
			errors.Report(&errors.SetStateError{
				Op:   "core.FlushBuild",
				Kind: errors.KindEffect,
				Err:  fmt.Errorf("state did not settle after %d passes, dropped %d pending items", maxFlushPasses, dropped),
			})
			return
		}

		slices.SortFunc(b.dirty, func(x, y State) int {
			return x.state().order - y.state().order
		})
		dirty := b.dirty
		b.dirty = nil
		clear(b.dirtySet)
		b.mu.Unlock()

		for _, s := range dirty {
			b.rebuild(s)
		}

		b.mu.Lock()
		pending := b.pending
		b.pending = nil
		clear(b.pendSet)
		b.mu.Unlock()

		for _, st := range pending {
			stabilize(st)
		}
	}
}

func (b *BuildOwner) rebuild(s State) {
	base := s.state()
	base.dirty = false
	if !base.mounted || base.disposed {
		return
	}
	defer errors.Recover(fmt.Sprintf("core.Build(%T)", s))
	s.Build()
}

// stabilize runs one stabilization step, reporting a panicking change
// callback instead of aborting the pass.
func stabilize(st cell.Stabilizer) {
	defer func() {
		if r := recover(); r != nil {
			var name string
			if named, ok := st.(interface{ Name() string }); ok {
				name = named.Name()
			}
			errors.ReportEffectError(&errors.EffectError{
				Cell:       name,
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	st.Stabilize()
}
