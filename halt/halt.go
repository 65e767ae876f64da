// Package halt stops the program after an unrecoverable error. On the target
// there is nothing safe left to do, so Halt never returns.
package halt

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Handler is invoked once with the first fatal error.
type Handler func(err error)

var (
	halted  atomic.Bool
	once    sync.Once
	handler atomic.Value // Handler
	logger  atomic.Pointer[slog.Logger]
)

// SetHandler replaces the handler run by the first Halt. The default handler
// does nothing and Halt simply parks forever.
func SetHandler(fn Handler) {
	handler.Store(fn)
}

func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Halted reports whether Halt has been called.
func Halted() bool {
	return halted.Load()
}

// Halt records err, runs the handler on the first call and then blocks the
// calling goroutine forever. A handler that wants Halt to unwind instead, as
// tests do, may panic or call runtime.Goexit.
func Halt(err error) {
	halted.Store(true)
	once.Do(func() {
		if l := logger.Load(); l != nil {
			l.Error("halted", slog.Any("error", err))
		}
		if fn, ok := handler.Load().(Handler); ok && fn != nil {
			fn(err)
		}
	})
	select {}
}

// Check halts on a non-nil err.
func Check(err error) {
	if err != nil {
		Halt(err)
	}
}

// reset is used by tests to rearm the package.
func reset() {
	halted.Store(false)
	once = sync.Once{}
	handler.Store(Handler(nil))
}
