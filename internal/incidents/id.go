package incidents

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// IDGenerator returns a fresh incident id on each call.
type IDGenerator func() string

// NewUUIDGenerator returns a generator of time-ordered UUIDv7 ids.
func NewUUIDGenerator() IDGenerator {
	return func() string {
		id, err := uuid.NewV7()
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	}
}
