package cell

import "github.com/go-drift/setstate/pkg/errors"

type config struct {
	scheduler Scheduler
	handler   errors.ErrorHandler
	name      string
	merge     bool
	onUpdate  func()
}

// Option configures a Cell.
type Option func(*config)

// WithScheduler sets the scheduler that runs the cell's stabilization step.
func WithScheduler(s Scheduler) Option {
	return func(c *config) {
		c.scheduler = s
	}
}

// WithHandler routes the cell's diagnostics to h instead of the global handler.
func WithHandler(h errors.ErrorHandler) Option {
	return func(c *config) {
		c.handler = h
	}
}

// WithName sets the name reported in diagnostics.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithoutMerge disables map merging; every update replaces the value.
func WithoutMerge() Option {
	return func(c *config) {
		c.merge = false
	}
}

// WithOnUpdate registers fn to run after every applied update, before the
// cell is scheduled. Hosts use it to mark the owning component for rebuild.
func WithOnUpdate(fn func()) Option {
	return func(c *config) {
		c.onUpdate = fn
	}
}
