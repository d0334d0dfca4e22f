package clock

import "time"

// Clock abstracts time for components that schedule or window by wall time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
