package pipeline

import "github.com/google/uuid"

// NewJobID returns a UUIDv7, which sorts by creation time.
func NewJobID() string {
	return uuid.Must(uuid.NewV7()).String()
}
