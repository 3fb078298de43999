package core

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// ID is an opaque identifier shared by work orders and work centers. Ids
// minted by NewID are KSUIDs, so they sort lexicographically in creation
// order; ids decoded from input payloads may be any string.
type ID string

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the ID is the zero value ("").
func (id ID) IsZero() bool {
	return id == ""
}

// MarshalJSON renders the ID as a plain JSON string, including the zero value.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + string(id) + `"`), nil
}

// UnmarshalJSON accepts any JSON string as an ID without KSUID validation:
// input payloads (§6) are free to use arbitrary opaque ids, so strict KSUID
// parsing is reserved for ids this package itself mints via NewID.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("id must be a JSON string, got %q", data)
	}
	*id = ID(data[1 : len(data)-1])
	return nil
}

// NewID mints a fresh, time-sortable id.
func NewID() (ID, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate new ID: %w", err)
	}
	return ID(id.String()), nil
}

// MustNewID is NewID for call sites (tests, fixtures) that cannot propagate
// an error.
func MustNewID() ID {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}

// ParseID validates that s is a well-formed KSUID minted by this package.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("empty ID")
	}
	if _, err := ksuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid ID format: %w", err)
	}
	return ID(s), nil
}
