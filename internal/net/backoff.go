package net

import "time"

// Backoff is an exponential redial schedule. Zero fields take the defaults.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Factor  float64
}

func DefaultBackoff() Backoff {
	return Backoff{Initial: 500 * time.Millisecond, Max: 30 * time.Second, Factor: 2}
}

// Delay returns the wait before redial number attempt, counting from 0.
func (b Backoff) Delay(attempt int) time.Duration {
	def := DefaultBackoff()
	if b.Initial <= 0 {
		b.Initial = def.Initial
	}
	if b.Max <= 0 {
		b.Max = def.Max
	}
	if b.Factor < 1 {
		b.Factor = def.Factor
	}

	d := float64(b.Initial)
	for range attempt {
		d *= b.Factor
		if d >= float64(b.Max) {
			return b.Max
		}
	}
	return min(time.Duration(d), b.Max)
}
