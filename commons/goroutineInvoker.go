package commons

import (
	"runtime/debug"

	"github.com/helloworldpark/tickle-stock-info/logger"
)

// InvokeGoroutine runs f on a new goroutine.
// A panic inside f is recovered and logged with its stack trace.
func InvokeGoroutine(tag string, f func()) {
	go RunRecovered(tag, f)
}

// RunRecovered runs f on the current goroutine, recovering panics.
// Returns false if f panicked.
func RunRecovered(tag string, f func()) (ok bool) {
	defer func() {
		if v := recover(); v != nil {
			logger.Error("[Goroutine] %s panicked at %v: %+v\n%s", tag, Now(), v, debug.Stack())
			ok = false
		}
	}()

	f()
	return true
}
