package game

import "time"

// Scheduler runs f once after d. Scheduled calls cannot be cancelled.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type TimeScheduler struct{}

func (TimeScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
