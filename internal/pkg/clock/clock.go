package clock

import "time"

// Clock is the sole source of "now" for scheduling decisions. Injecting it
// keeps due-selection and next-run computation deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func System() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a settable instant, for tests.
type Fixed struct {
	t time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

func (f *Fixed) Now() time.Time {
	return f.t
}

func (f *Fixed) Set(t time.Time) {
	f.t = t
}

func (f *Fixed) Advance(d time.Duration) {
	f.t = f.t.Add(d)
}
