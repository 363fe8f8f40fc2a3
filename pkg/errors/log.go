package errors

import (
	"sync"

	"go.uber.org/zap"
)

var (
	defaultLoggerOnce sync.Once
	defaultLogger     *zap.Logger
)

func fallbackLogger() *zap.Logger {
	defaultLoggerOnce.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		defaultLogger = l
	})
	return defaultLogger
}

// LogHandler is an ErrorHandler that writes to a zap logger.
// Configuration diagnostics are logged at warn level, failures at error level.
type LogHandler struct {
	// Logger receives the entries. Nil means a production logger on stderr.
	Logger *zap.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return fallbackLogger()
}

// HandleError logs a SetStateError. KindConfig errors are warnings: the
// message is the underlying error text so it reads like a plain diagnostic.
func (h *LogHandler) HandleError(err *SetStateError) {
	if err == nil {
		return
	}
	fields := []zap.Field{zap.String("op", err.Op), zap.Stringer("kind", err.Kind)}
	if err.Cell != "" {
		fields = append(fields, zap.String("cell", err.Cell))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	if err.Kind == KindConfig {
		msg := err.Error()
		if err.Err != nil {
			msg = err.Err.Error()
		}
		h.logger().Warn(msg, fields...)
		return
	}
	h.logger().Error("setstate error", append(fields, zap.Error(err.Err))...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{zap.Any("value", err.Value)}
	if err.Op != "" {
		fields = append(fields, zap.String("op", err.Op))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger().Error("setstate panic", fields...)
}

// HandleEffectError logs an EffectError.
func (h *LogHandler) HandleEffectError(err *EffectError) {
	if err == nil {
		return
	}
	fields := []zap.Field{zap.String("cell", err.Cell), zap.Any("recovered", err.Recovered)}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger().Error("change callback failed", fields...)
}
