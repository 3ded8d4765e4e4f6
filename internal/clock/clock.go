package clock

import "time"

// Clock is the time capability injected into every component that needs
// "now". Production wires the system clock; tests wire a fixed one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func System() Clock { return systemClock{} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// FixedAt returns a clock frozen at t.
func FixedAt(t time.Time) Clock { return fixedClock{t: t} }
