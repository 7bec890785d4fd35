package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemGrowReturnsOldLength(t *testing.T) {
	m := NewMem(1024)

	off, err := m.Grow(88)
	require.NoError(t, err)
	assert.Equal(t, 0, off)

	off, err = m.Grow(512)
	require.NoError(t, err)
	assert.Equal(t, 88, off)
	assert.Equal(t, 600, m.Len())
	assert.Len(t, m.Bytes(), 600)
}

func TestMemGrowPreservesContents(t *testing.T) {
	m := NewMem(0)
	_, err := m.Grow(16)
	require.NoError(t, err)
	copy(m.Bytes(), "0123456789abcdef")

	// Force several reallocations of the backing array.
	for range 10 {
		_, err = m.Grow(4096)
		require.NoError(t, err)
	}
	assert.Equal(t, "0123456789abcdef", string(m.Bytes()[:16]))
}

func TestMemLimit(t *testing.T) {
	m := NewMem(100)
	_, err := m.Grow(64)
	require.NoError(t, err)

	_, err = m.Grow(64)
	require.ErrorIs(t, err, ErrLimit)
	assert.Equal(t, 64, m.Len(), "failed grow must not change the region")

	off, err := m.Grow(36)
	require.NoError(t, err)
	assert.Equal(t, 64, off)
}

func TestMemNegativeGrow(t *testing.T) {
	m := NewMem(0)
	_, err := m.Grow(-1)
	require.ErrorIs(t, err, ErrBadGrow)
}

func TestMemResetZeroesOnRegrow(t *testing.T) {
	m := NewMem(0)
	_, err := m.Grow(32)
	require.NoError(t, err)
	for i := range m.Bytes() {
		m.Bytes()[i] = 0xff
	}

	require.NoError(t, m.Reset())
	assert.Equal(t, 0, m.Len())

	_, err = m.Grow(32)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), m.Bytes())
}

func TestMemDefaultLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NewMem(0).Limit())
	assert.Equal(t, 10, NewMem(10).Limit())
}
