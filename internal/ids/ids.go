// Package ids checks entity identifiers before they are used in a lookup.
package ids

import "github.com/google/uuid"

// Valid reports whether value is a canonical, hyphenated UUID.
func Valid(value string) bool {
	if len(value) != 36 {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}
