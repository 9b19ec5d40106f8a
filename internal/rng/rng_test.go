package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Reproducible(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestUniform_Bounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := Uniform(r, -0.1, 0.1)
		require.GreaterOrEqual(t, v, -0.1)
		require.Less(t, v, 0.1)
	}
}

func TestCentered(t *testing.T) {
	s := &Scripted{Values: []float64{0, 0.5, 0.75}}
	assert.InDelta(t, -5.0, Centered(s, 10), 1e-9)
	assert.InDelta(t, 0.0, Centered(s, 10), 1e-9)
	assert.InDelta(t, 2.5, Centered(s, 10), 1e-9)
}

func TestChance(t *testing.T) {
	s := &Scripted{Values: []float64{0.3}}
	assert.True(t, Chance(s, 0.5))
	assert.False(t, Chance(s, 0.2))
	assert.False(t, Chance(s, 0))
}

func TestPick_DistinctSorted(t *testing.T) {
	r := New(3)
	for i := 0; i < 100; i++ {
		got := Pick(r, 7, 4)
		require.Len(t, got, 4)
		seen := map[int]bool{}
		for j, v := range got {
			require.False(t, seen[v], "duplicate %d", v)
			seen[v] = true
			require.True(t, v >= 0 && v < 7)
			if j > 0 {
				require.Less(t, got[j-1], v)
			}
		}
	}
	assert.Len(t, Pick(r, 3, 5), 3)
}

func TestUUID_FollowsSeed(t *testing.T) {
	a := UUID(New(9))
	b := UUID(New(9))
	c := UUID(New(10))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 4, int(a.Version()))
}

func TestScripted_IntN(t *testing.T) {
	s := &Scripted{Values: []float64{0.0, 0.99, 0.5}}
	assert.Equal(t, 0, s.IntN(12))
	assert.Equal(t, 11, s.IntN(12))
	assert.Equal(t, 6, s.IntN(12))
}
