package testing

import (
	"sync"

	"github.com/go-drift/setstate/pkg/errors"
)

// RecordingHandler is an errors.ErrorHandler that keeps everything it receives.
// All methods are safe for concurrent use.
type RecordingHandler struct {
	mu      sync.Mutex
	errs    []*errors.SetStateError
	panics  []*errors.PanicError
	effects []*errors.EffectError
}

// HandleError records err.
func (h *RecordingHandler) HandleError(err *errors.SetStateError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

// HandlePanic records err.
func (h *RecordingHandler) HandlePanic(err *errors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

// HandleEffectError records err.
func (h *RecordingHandler) HandleEffectError(err *errors.EffectError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.effects = append(h.effects, err)
}

// Errors returns the recorded structured errors.
func (h *RecordingHandler) Errors() []*errors.SetStateError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*errors.SetStateError(nil), h.errs...)
}

// Warnings returns the messages of recorded configuration diagnostics,
// in the form a log sink would print them.
func (h *RecordingHandler) Warnings() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, err := range h.errs {
		if err.Kind == errors.KindConfig && err.Err != nil {
			out = append(out, err.Err.Error())
		}
	}
	return out
}

// Panics returns the recorded panics.
func (h *RecordingHandler) Panics() []*errors.PanicError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*errors.PanicError(nil), h.panics...)
}

// EffectErrors returns the recorded change callback failures.
func (h *RecordingHandler) EffectErrors() []*errors.EffectError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*errors.EffectError(nil), h.effects...)
}

// Reset discards everything recorded so far.
func (h *RecordingHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs, h.panics, h.effects = nil, nil, nil
}

func (h *RecordingHandler) counts() (panics, effects int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.panics), len(h.effects)
}

func (h *RecordingHandler) firstFailureSince(panics, effects int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.panics) > panics {
		return h.panics[panics]
	}
	if len(h.effects) > effects {
		return h.effects[effects]
	}
	return nil
}
