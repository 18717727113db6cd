// Package ids mints the opaque identifiers used by every persisted record.
package ids

import "github.com/google/uuid"

// New returns a fresh, process-wide unique identifier.
func New() string {
	return uuid.New().String()
}
