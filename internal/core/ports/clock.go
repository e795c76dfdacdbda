package ports

import "time"

// Clock returns the current instant. Services never read ambient system time directly.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique entity identifiers.
type IDGenerator interface {
	NewID() string
}
