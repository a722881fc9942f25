// Package uuid generates the identifiers used for every persisted record.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a new UUIDv7 string. UUIDv7 values sort by creation time,
// so primary keys stay roughly append-ordered.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does
		return googleuuid.New().String()
	}
	return id.String()
}
