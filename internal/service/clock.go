// Package service contains the simulation engine: the time window
// matcher, the per-trip and per-route synthesizers, the alert generator
// and the passenger flow model. Everything here is ephemeral — no output
// survives the request that produced it.
package service

import (
	"math/rand"
	"time"
)

// Clock supplies the "current instant" for the simulation. Injected so
// production can run on the wall clock (or a peak-hour variant) while
// tests pin now.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// peakHours are the service hours the peak clock draws from. Forcing the
// simulated instant into rush hour keeps the matcher output interesting
// regardless of when the dashboard is viewed.
var peakHours = []int{7, 8, 9, 16, 17, 18}

// PeakClock reports the current date but replaces the time of day with a
// random peak-hour instant on every call.
type PeakClock struct{}

func (PeakClock) Now() time.Time {
	now := time.Now()
	hour := peakHours[rand.Intn(len(peakHours))]
	return time.Date(now.Year(), now.Month(), now.Day(), hour, rand.Intn(60), now.Second(), 0, now.Location())
}

// FixedClock always reports the same instant. Used in tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
