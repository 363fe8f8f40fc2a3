package testing

import (
	"errors"
	"testing"

	"github.com/go-drift/setstate/pkg/core"
	sserrors "github.com/go-drift/setstate/pkg/errors"
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its frame budget.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: owner did not settle")

// Tester drives mounted component states through stabilization passes
// without a run loop. It records every diagnostic reported while it is
// active.
type Tester struct {
	buildOwner  *core.BuildOwner
	handler     *RecordingHandler
	prevHandler sserrors.ErrorHandler
	mounted     []core.State
	dispatches  []func()
	frames      int
}

// NewTester creates a tester and installs its RecordingHandler as the global
// error handler. Call Cleanup() when done, or use NewTesterWithT() instead.
func NewTester() *Tester {
	t := &Tester{
		buildOwner: core.NewBuildOwner(),
		handler:    &RecordingHandler{},
	}
	t.prevHandler = sserrors.Handler()
	sserrors.SetHandler(t.handler)
	return t
}

// NewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts every mounted state and restores the global handler.
func (t *Tester) Cleanup() {
	for i := len(t.mounted) - 1; i >= 0; i-- {
		t.buildOwner.Unmount(t.mounted[i])
	}
	t.mounted = nil
	sserrors.SetHandler(t.prevHandler)
}

// Owner returns the tester's BuildOwner.
func (t *Tester) Owner() *core.BuildOwner {
	return t.buildOwner
}

// Handler returns the handler that records diagnostics.
func (t *Tester) Handler() *RecordingHandler {
	return t.handler
}

// Frames returns the number of pumped frames.
func (t *Tester) Frames() int {
	return t.frames
}

// Mount mounts s and runs one frame, which performs the first stabilization
// of every cell created in InitState.
func (t *Tester) Mount(s core.State) error {
	t.buildOwner.Mount(s)
	t.mounted = append(t.mounted, s)
	return t.Pump()
}

// Unmount disposes s.
func (t *Tester) Unmount(s core.State) {
	t.buildOwner.Unmount(s)
	for i, m := range t.mounted {
		if m == s {
			t.mounted = append(t.mounted[:i], t.mounted[i+1:]...)
			break
		}
	}
}

// Pump runs a single frame: drains the dispatch queue, then flushes the
// owner. It returns the first panic or failing callback recorded during
// the frame.
func (t *Tester) Pump() error {
	panics, effects := t.handler.counts()

	dispatches := t.dispatches
	t.dispatches = nil
	for _, fn := range dispatches {
		fn()
	}

	t.buildOwner.FlushBuild()
	t.frames++

	return t.handler.firstFailureSince(panics, effects)
}

// PumpAndSettle pumps until the owner has no pending work or maxFrames
// frames ran. Returns ErrSettleTimeout if it does not settle.
func (t *Tester) PumpAndSettle(maxFrames int) error {
	for i := 0; i < maxFrames; i++ {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.needsWork() {
			return nil
		}
	}
	return ErrSettleTimeout
}

func (t *Tester) needsWork() bool {
	return t.buildOwner.NeedsWork() || len(t.dispatches) > 0
}

// Dispatch queues a callback for the next frame, mirroring engine.Runner.Dispatch.
func (t *Tester) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	t.dispatches = append(t.dispatches, fn)
}
