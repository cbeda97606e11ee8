package utils

import "github.com/google/uuid"

// UUIDGenerator produces client-side record identifiers.
// Version 7 UUIDs are time-ordered, which keeps freshly logged entries
// roughly sequential in the cache indexes; if v7 generation fails the
// generator falls back to a random v4.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a new globally unique record identifier.
func (g *UUIDGenerator) NewID() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
