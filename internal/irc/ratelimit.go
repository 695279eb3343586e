package irc

import (
	"time"

	"golang.org/x/time/rate"
)

// newLimiter turns a TokenBucket into a rate.Limiter holding Init tokens.
// A non-positive Delay disables limiting.
func newLimiter(tb TokenBucket, now time.Time) *rate.Limiter {
	burst := tb.Burst
	if burst < 1 {
		burst = 1
	}
	if tb.Delay <= 0 {
		return rate.NewLimiter(rate.Inf, burst)
	}
	lim := rate.NewLimiter(rate.Every(tb.Delay), burst)
	init := tb.Init
	if init < 0 {
		init = 0
	}
	if init < burst {
		lim.AllowN(now, burst-init)
	}
	return lim
}
