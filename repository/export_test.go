package repository

import "time"

// NewTimestampKeysAt returns a generator with a fixed clock.
func NewTimestampKeysAt(now func() time.Time) *TimestampKeys {
	return &TimestampKeys{now: now}
}
