package models

import (
	"github.com/google/uuid"
)

// newID returns an opaque identifier for a new row
func newID() string {
	return uuid.NewString()
}

// ensureID assigns a generated identifier unless the caller preset one
func ensureID(id *string) {
	if *id == "" {
		*id = newID()
	}
}
