package hg

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts "now" so day boundaries are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// LocalClock reports the current wall time in the process's local zone, which is
// what decides the day a water entry belongs to.
type LocalClock struct{}

func (LocalClock) Now() time.Time { return time.Now().Local() }

// IDGenerator produces identifiers for users, foods and exercises.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewString() }
