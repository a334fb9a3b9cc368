package service

import "time"

// Clock supplies the engine's notion of current time so tests can drive it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation used in production.
func SystemClock() Clock { return systemClock{} }
