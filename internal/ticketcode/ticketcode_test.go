package ticketcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorStartsAtZero(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, "0000000", g.Next())
	assert.Equal(t, "0000001", g.Next())
	assert.Equal(t, "0000002", g.Next())
}

func TestGeneratorProducesUniqueSequence(t *testing.T) {
	g := NewGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		code := g.Next()
		assert.Len(t, code, Len)
		assert.False(t, seen[code], "duplicate code %s at iteration %d", code, i)
		seen[code] = true
	}
}

func TestGeneratorNineRollsToAWithoutCarry(t *testing.T) {
	g := &Generator{next: [Len]byte{'0', '0', '0', '0', '0', '0', '9'}}
	assert.Equal(t, "0000009", g.Next())
	assert.Equal(t, "000000A", g.Next())
	assert.Equal(t, "000000B", g.Next())
}

func TestGeneratorFullWrap(t *testing.T) {
	g := &Generator{next: [Len]byte{'Z', 'Z', 'Z', 'Z', 'Z', 'Z', 'Z'}}
	assert.Equal(t, "ZZZZZZZ", g.Next())
	assert.Equal(t, "0000000", g.Next())
}

func TestGeneratorCarriesIntoNextPosition(t *testing.T) {
	g := &Generator{next: [Len]byte{'0', '0', '0', '0', '0', '0', 'Z'}}
	assert.Equal(t, "000000Z", g.Next())
	assert.Equal(t, "0000010", g.Next())
}
