package fixtures

import (
	"fmt"
	"strings"
)

// NotFoundError is raised when a fixture identifier has no backing file.
// The message enumerates the available fixtures so a broken test names its
// fix.
type NotFoundError struct {
	// ID is the requested fixture identifier
	ID string

	// Available lists the fixture identifiers present in the directory
	Available []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	available := "none"
	if len(e.Available) > 0 {
		available = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("fixture %q not found (available fixtures: %s)", e.ID, available)
}

// IndexError is raised when a response index falls outside the fixture's
// response list. A silent clamp would mask a test/fixture mismatch, so the
// failure is loud and names both the index and the count.
type IndexError struct {
	// ID is the fixture identifier
	ID string

	// Index is the requested response index
	Index int

	// Count is the number of responses the fixture holds
	Count int
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("fixture %q response index %d out of bounds (fixture has %d responses)",
		e.ID, e.Index, e.Count)
}

// KeyError is raised when a storyline lookup names a key the fixture does
// not carry.
type KeyError struct {
	// ID is the fixture identifier
	ID string

	// Key is the requested storyline key
	Key string

	// Available lists the storyline keys the fixture carries
	Available []string
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	available := "none"
	if len(e.Available) > 0 {
		available = strings.Join(e.Available, ", ")
	}
	return fmt.Sprintf("fixture %q has no storyline key %q (available keys: %s)",
		e.ID, e.Key, available)
}
