package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCountGridRejectsEmptyDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-1, 3}, {0, 0}} {
		g, err := NewCountGrid(dims[0], dims[1])
		require.ErrorIs(t, err, ErrInvalidDimensions, "dims %v", dims)
		assert.Nil(t, g)
	}

	g, err := NewCountGrid(1, 1)
	require.NoError(t, err)
	assert.Len(t, g.Counts(), 1)
}

func TestGetSetBoundsChecked(t *testing.T) {
	g, err := NewCountGrid(4, 3)
	require.NoError(t, err)

	require.NoError(t, g.Set(3, 2, 9))
	v, err := g.Get(3, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), v)
	assert.Equal(t, uint64(9), g.Counts()[2*4+3])

	for _, xy := range [][2]int{{4, 0}, {0, 3}, {-1, 0}, {0, -1}} {
		_, err := g.Get(xy[0], xy[1])
		assert.ErrorIs(t, err, ErrOutOfBounds, "get %v", xy)
		assert.ErrorIs(t, g.Set(xy[0], xy[1], 1), ErrOutOfBounds, "set %v", xy)
		assert.ErrorIs(t, g.AddAt(1, xy[0], xy[1]), ErrOutOfBounds, "add %v", xy)
		assert.ErrorIs(t, g.RemoveAt(1, xy[0], xy[1]), ErrOutOfBounds, "remove %v", xy)
	}
	assert.Equal(t, uint64(9), g.Sum(), "rejected writes must not touch the grid")
}

func TestAddRemoveSaturate(t *testing.T) {
	g, err := NewCountGrid(2, 2)
	require.NoError(t, err)

	require.NoError(t, g.AddAt(5, 1, 1))
	require.NoError(t, g.RemoveAt(3, 1, 1))
	v, _ := g.Get(1, 1)
	assert.Equal(t, uint64(2), v)

	require.NoError(t, g.RemoveAt(100, 1, 1))
	v, _ = g.Get(1, 1)
	assert.Equal(t, uint64(0), v)

	require.NoError(t, g.Set(0, 0, math.MaxUint64-1))
	require.NoError(t, g.AddAt(10, 0, 0))
	v, _ = g.Get(0, 0)
	assert.Equal(t, uint64(math.MaxUint64), v)
}

func TestWrapAndInterior(t *testing.T) {
	g, err := NewCountGrid(4, 5)
	require.NoError(t, err)

	x, y := g.Wrap(-1, 5)
	assert.Equal(t, 3, x)
	assert.Equal(t, 0, y)
	x, y = g.Wrap(9, -6)
	assert.Equal(t, 1, x)
	assert.Equal(t, 4, y)

	assert.False(t, g.Interior(0, 2))
	assert.False(t, g.Interior(3, 2))
	assert.False(t, g.Interior(1, 4))
	assert.True(t, g.Interior(1, 1))
	assert.True(t, g.Interior(2, 3))
}

func TestCloneIsIndependent(t *testing.T) {
	g, err := NewCountGrid(3, 3)
	require.NoError(t, err)
	require.NoError(t, g.Set(1, 1, 7))
	require.NoError(t, g.Set(0, 0, 2))

	c := g.Clone()
	require.NoError(t, g.Set(1, 1, 0))
	v, _ := c.Get(1, 1)
	assert.Equal(t, uint64(7), v)
	assert.Equal(t, uint64(9), c.Sum())
	assert.Equal(t, uint64(7), c.InteriorSum())

	other, err := NewCountGrid(2, 2)
	require.NoError(t, err)
	assert.False(t, other.CopyFrom(c))
	assert.True(t, g.CopyFrom(c))
	assert.Equal(t, c.Counts(), g.Counts())

	g.Clear()
	assert.Zero(t, g.Sum())
}
