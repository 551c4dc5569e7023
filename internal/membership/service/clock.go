package service

import "time"

// clock returns now from f in UTC, defaulting to the wall clock.
func clock(f func() time.Time) time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}
