package ids

import "github.com/google/uuid"

// Generator produces unique identifiers for persisted records
type Generator interface {
	// NewID returns a new unique identifier with the given prefix
	NewID(prefix string) string
}

// UUIDGenerator implements Generator with random (v4) UUIDs
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns prefix followed by a random UUID
func (g *UUIDGenerator) NewID(prefix string) string {
	return prefix + uuid.NewString()
}
