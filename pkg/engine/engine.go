// Package engine runs a BuildOwner on a single goroutine.
//
// A Runner is the host run loop: other goroutines hand it work with
// Dispatch, and each frame drains the dispatch queue and then flushes the
// owner, which is the stabilization pass for every mounted state. Cells are
// only ever touched from the loop goroutine.
//
//	r := engine.NewRunner()
//	r.Mount(state)
//	go func() {
//	    result := doExpensiveWork()
//	    r.Dispatch(func() {
//	        state.data.Set(result) // runs on the loop goroutine
//	    })
//	}()
//	err := r.Run(ctx)
package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-drift/setstate/pkg/core"
	"github.com/go-drift/setstate/pkg/errors"
)

// Runner owns a BuildOwner and serializes all work on it.
type Runner struct {
	buildOwner    *core.BuildOwner
	dispatchMu    sync.Mutex
	dispatchQueue []func()
	wake          chan struct{}
	frameLock     sync.Mutex
	frames        atomic.Int64
	failed        atomic.Int64

	// OnFrame, if set, is called on the loop goroutine after every frame.
	OnFrame func(frame int64)
}

// NewRunner creates a runner with a fresh BuildOwner.
func NewRunner() *Runner {
	r := &Runner{
		buildOwner: core.NewBuildOwner(),
		wake:       make(chan struct{}, 1),
	}
	// Wire up frame scheduling so SetState and cell updates trigger a frame.
	r.buildOwner.OnNeedsFrame = r.RequestFrame
	return r
}

// Owner returns the runner's BuildOwner. Only use it from the loop goroutine.
func (r *Runner) Owner() *core.BuildOwner {
	return r.buildOwner
}

// Dispatch schedules a callback to run on the loop goroutine during the
// next frame and is safe to call from any goroutine.
func (r *Runner) Dispatch(callback func()) {
	if callback == nil {
		return
	}
	r.dispatchMu.Lock()
	r.dispatchQueue = append(r.dispatchQueue, callback)
	r.dispatchMu.Unlock()
	r.RequestFrame()
}

// Mount schedules s to be mounted on the loop goroutine.
func (r *Runner) Mount(s core.State) {
	r.Dispatch(func() { r.buildOwner.Mount(s) })
}

// Unmount schedules s to be disposed on the loop goroutine.
func (r *Runner) Unmount(s core.State) {
	r.Dispatch(func() { r.buildOwner.Unmount(s) })
}

// RequestFrame asks the loop to run a frame. Requests made while a frame is
// already pending coalesce.
func (r *Runner) RequestFrame() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// NeedsFrame returns true if there are pending dispatches or owner work.
func (r *Runner) NeedsFrame() bool {
	r.dispatchMu.Lock()
	hasCallbacks := len(r.dispatchQueue) > 0
	r.dispatchMu.Unlock()
	if hasCallbacks {
		return true
	}
	r.frameLock.Lock()
	defer r.frameLock.Unlock()
	return r.buildOwner.NeedsWork()
}

// Frames returns the number of frames run so far.
func (r *Runner) Frames() int64 {
	return r.frames.Load()
}

// FailedDispatches returns the number of dispatched callbacks that panicked.
func (r *Runner) FailedDispatches() int64 {
	return r.failed.Load()
}

// Run processes frames until ctx is done and returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
			r.StepFrame()
		}
	}
}

// StepFrame runs one frame synchronously: every queued dispatch, then one
// stabilization pass. Callers that drive the runner without Run use it
// directly; it must not be called concurrently with Run.
func (r *Runner) StepFrame() {
	r.frameLock.Lock()
	defer r.frameLock.Unlock()

	for _, cb := range r.drainDispatchQueue() {
		r.runDispatch(cb)
	}
	r.buildOwner.FlushBuild()

	frame := r.frames.Add(1)
	if r.OnFrame != nil {
		r.OnFrame(frame)
	}
}

func (r *Runner) runDispatch(cb func()) {
	defer errors.RecoverWithCallback("engine.Dispatch", func(any) {
		r.failed.Add(1)
	})
	cb()
}

func (r *Runner) drainDispatchQueue() []func() {
	r.dispatchMu.Lock()
	callbacks := append([]func(){}, r.dispatchQueue...)
	r.dispatchQueue = nil
	r.dispatchMu.Unlock()
	return callbacks
}
