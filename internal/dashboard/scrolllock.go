package dashboard

import "sync"

// ScrollLock suspends background scrolling while at least one holder has it.
// Not safe for concurrent use; it belongs to the UI event loop.
type ScrollLock struct {
	held int
}

// Acquire takes the lock and returns its release function.
// Calling release more than once has no further effect.
func (l *ScrollLock) Acquire() (release func()) {
	l.held++
	var once sync.Once
	return func() {
		once.Do(func() { l.held-- })
	}
}

// Locked reports whether background scrolling is suspended.
func (l *ScrollLock) Locked() bool {
	return l.held > 0
}
