package service

import "math/rand"

// All draws use the package-level math/rand source, which is safe for
// concurrent use and independently seeded per process. Each draw is
// logically independent; nothing in a request correlates with another.

// intBetween returns a uniform integer in [min, max], inclusive.
func intBetween(min, max int) int {
	return min + rand.Intn(max-min+1)
}

// floatBetween returns a uniform float in [min, max).
func floatBetween(min, max float64) float64 {
	return min + rand.Float64()*(max-min)
}

// choice returns a uniformly selected element of items, which must be
// non-empty.
func choice[T any](items []T) T {
	return items[rand.Intn(len(items))]
}

// delayDistribution maps delay minutes to probability mass. Mass for "no
// delay" is 0.7; the tail thins out to the rare 8-minute incident.
var delayDistribution = []struct {
	minutes int
	weight  float64
}{
	{0, 0.70},
	{1, 0.10},
	{2, 0.10},
	{3, 0.05},
	{5, 0.03},
	{8, 0.02},
}

// drawDelay samples a delay in minutes from the fixed distribution.
func drawDelay() int {
	r := rand.Float64()
	acc := 0.0
	for _, d := range delayDistribution {
		acc += d.weight
		if r < acc {
			return d.minutes
		}
	}
	return delayDistribution[len(delayDistribution)-1].minutes
}
