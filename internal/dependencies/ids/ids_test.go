package ids

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDHasPrefixAndUUID(t *testing.T) {
	id := New().NewID("m_")

	require.True(t, strings.HasPrefix(id, "m_"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "m_"))
	assert.NoError(t, err)
}

func TestNewIDIsUnique(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.NewID("")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
