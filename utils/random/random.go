// Package random generates the identifiers carried by messages and requests.
package random

import "github.com/google/uuid"

// GenerateUUIDString returns a random (version 4) UUID in its canonical form.
// It is used for correlation, message and request ids.
func GenerateUUIDString() string {
	return uuid.NewString()
}
