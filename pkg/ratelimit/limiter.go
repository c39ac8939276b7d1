package ratelimit

import (
	uberratelimit "go.uber.org/ratelimit"
)

// Pacer spaces outbound requests. Take blocks until the next request is
// allowed to start.
type Pacer interface {
	Take()
}

// fixedRate paces requests to at most rps per second with even spacing
type fixedRate struct {
	limiter uberratelimit.Limiter
}

// NewFixedRate creates a pacer allowing rps requests per second. A 5 rps
// pacer yields the 200ms gap between metadata calls; a 1 rps pacer yields
// the one second gap between file downloads.
func NewFixedRate(rps int) Pacer {
	return &fixedRate{limiter: uberratelimit.New(rps)}
}

func (f *fixedRate) Take() {
	f.limiter.Take()
}

// NewUnlimited creates a pacer that never blocks (useful for tests)
func NewUnlimited() Pacer {
	return &unlimited{limiter: uberratelimit.NewUnlimited()}
}

type unlimited struct {
	limiter uberratelimit.Limiter
}

func (u *unlimited) Take() {
	u.limiter.Take()
}
