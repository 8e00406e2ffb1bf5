package store

import "github.com/google/uuid"

// newID returns a random UUID string for a new row.
func newID() string {
	return uuid.NewString()
}
