package dialogue

import "time"

// Scheduler runs delayed follow-up steps such as the export prompt and the
// forecast reveal.
type Scheduler interface {
	After(d time.Duration, f func())
}

// TimerScheduler runs f on its own goroutine once d has elapsed.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// ImmediateScheduler runs f synchronously, ignoring the delay. Relative
// order of scheduled steps is preserved.
type ImmediateScheduler struct{}

func (ImmediateScheduler) After(_ time.Duration, f func()) {
	f()
}
