package runner

import "time"

// Schedule bounds the poll loop and sets its two-tier sleep intervals: the
// fast interval for the first FastAttempts iterations, the slow interval for
// the rest of the budget.
type Schedule struct {
	MaxAttempts  int
	FastInterval time.Duration
	FastAttempts int
	SlowInterval time.Duration
}

// DefaultSchedule polls every 5s for the first 10 attempts, then every 10s,
// for at most 120 attempts.
func DefaultSchedule() Schedule {
	return Schedule{
		MaxAttempts:  120,
		FastInterval: 5 * time.Second,
		FastAttempts: 10,
		SlowInterval: 10 * time.Second,
	}
}

// Interval returns the sleep duration after the given zero-based attempt.
func (s Schedule) Interval(attempt int) time.Duration {
	if attempt < s.FastAttempts {
		return s.FastInterval
	}
	return s.SlowInterval
}
