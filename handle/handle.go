// Package handle provides the strong (name, id) value type used throughout
// the engine to reference goals, plans, agents, desires, intentions, and
// every other named, uniquely-identified entity.
package handle

import "github.com/google/uuid"

// Handle is a value type pairing a human-readable name with a 128-bit
// unique identifier. Handles compare equal iff their ids match; the Name
// is a display/debugging aid only and never participates in equality.
type Handle struct {
	Name string
	ID   uuid.UUID
}

// New returns a fresh Handle with a random id and the given name.
func New(name string) Handle {
	return Handle{Name: name, ID: uuid.New()}
}

// WithID returns a Handle carrying an explicit id, e.g. when an id arrives
// from a caller-supplied event_id and must be preserved rather than
// regenerated.
func WithID(name string, id uuid.UUID) Handle {
	return Handle{Name: name, ID: id}
}

// Valid reports whether the handle carries a non-zero id.
func (h Handle) Valid() bool {
	return h.ID != uuid.Nil
}

// Equal compares two handles by id only, per spec.
func (h Handle) Equal(o Handle) bool {
	return h.ID == o.ID
}

// String returns "name#id" for logging and debugging.
func (h Handle) String() string {
	if h.Name == "" {
		return h.ID.String()
	}
	return h.Name + "#" + h.ID.String()
}
