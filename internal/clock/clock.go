// Package clock abstracts time so the failure detector's lease timeout and
// the join retry backoff can be driven deterministically in tests.
package clock

import "time"

// Clock is the subset of time's free functions components depend on.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker mirrors time.Ticker so a fake clock can hand back a fake one.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real is a Clock backed by the standard library.
type Real struct{}

func (Real) Now() time.Time                        { return time.Now() }
func (Real) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (Real) NewTicker(d time.Duration) Ticker       { return &realTicker{time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
