package format

import "github.com/google/uuid"

// NewID generates a fresh entry identifier. Time-ordered v7 UUIDs are
// preferred per the format's id field description; uuid.NewV7 only
// fails if the system's random source is broken, in which case a
// v4 fallback is used so callers never need to handle an error here.
func NewID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
