package handid

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()
	id := Generate()
	assert.Len(t, id, 26)
	require.NoError(t, Validate(id))
}

func TestGenerateUnique(t *testing.T) {
	t.Parallel()
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := Generate()
		require.False(t, ids[id], "duplicate ID generated: %s", id)
		ids[id] = true
	}
}

func TestGenerateTimeSorted(t *testing.T) {
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, Generate())
		time.Sleep(2 * time.Millisecond)
	}
	assert.True(t, slices.IsSorted(ids), "IDs should sort by creation time: %v", ids)
}

func TestGeneratorUsesReader(t *testing.T) {
	t.Parallel()
	next := Generator(bytes.NewReader(bytes.Repeat([]byte{0xab}, 64)))
	id := next()
	require.NoError(t, Validate(id))

	u, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), u[15])
}

func TestValidate(t *testing.T) {
	t.Parallel()
	assert.Error(t, Validate("short"))
	assert.Error(t, Validate("!!!!!!!!!!!!!!!!!!!!!!!!!!"))
	assert.Error(t, Validate(encode([16]byte{})), "nil UUID is not v7")
}
