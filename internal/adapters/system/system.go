// Package system provides the production Clock and IDGenerator.
package system

import (
	"time"
	_ "time/tzdata" // zones resolve in minimal images

	"github.com/google/uuid"

	"github.com/SscSPs/practice_ledger_app/internal/core/ports"
)

// Clock reads wall time in a fixed location so calendar reports agree with the practitioner.
type Clock struct {
	Location *time.Location
}

var _ ports.Clock = Clock{}

// NewClock loads the named IANA zone. An empty name means UTC.
func NewClock(zone string) (Clock, error) {
	if zone == "" {
		return Clock{Location: time.UTC}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Clock{}, err
	}
	return Clock{Location: loc}, nil
}

func (c Clock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// UUIDGenerator issues random UUIDs.
type UUIDGenerator struct{}

var _ ports.IDGenerator = UUIDGenerator{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
