package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Registration returns a new time-ordered registration ID.
func Registration() string {
	u, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.NewString()
	}
	return u.String()
}

// Matcher returns a new random identity for a predicate that cannot be
// compared by value.
func Matcher() string {
	return uuid.NewString()
}

// Time extracts the creation time from a registration ID.
func Time(s string) (time.Time, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ID %q: %w", s, err)
	}
	if u.Version() != 7 {
		return time.Time{}, fmt.Errorf("ID %q is not time-ordered (version %d)", s, u.Version())
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}
