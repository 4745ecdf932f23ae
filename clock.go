package authcore

import "time"

// Clock supplies wall-clock time to the engine and the cleanup job.
// Injected so tests can drive TTL behavior without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default Clock, backed by time.Now.
var SystemClock Clock = systemClock{}
