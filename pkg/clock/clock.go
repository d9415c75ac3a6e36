package clock

import "time"

// Clock abstracts the current time so expiry logic can be tested
// deterministically.
type Clock interface {
	Now() time.Time
}

// Real is the production clock backed by time.Now.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed is a test clock that always returns the same instant until
// advanced.
type Fixed struct {
	T time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{T: t} }

func (f *Fixed) Now() time.Time { return f.T }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }
