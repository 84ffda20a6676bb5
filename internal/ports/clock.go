package ports

import "time"

//go:generate mockgen -package=mocks -destination=mocks/clock.go -source=clock.go Clock
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
