package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. Production code uses Real; tests use Fake
// so decay ordering and release gates can be driven deterministically.
type Clock interface {
	Now() time.Time
}

// Real reads the wall clock in UTC.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Fake is a manually advanced clock.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a Fake pinned at t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d and returns the new time.
func (f *Fake) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

// Set pins the clock at t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}
