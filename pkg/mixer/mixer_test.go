package mixer

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rng     Range
		percent float64
		exp     float64
	}{
		{"db_min", DefaultMemoryRange, 0, -65.25},
		{"db_max", DefaultMemoryRange, 100, 0},
		{"db_half", DefaultMemoryRange, 50, -32.625},
		{"raw_quarter", Range{Min: 0, Max: 65536}, 25, 16384},
		{"offset", Range{Min: 10, Max: 20}, 30, 13},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.exp, tc.rng.Level(tc.percent), 1e-9)
		})
	}

	t.Run("linear", func(t *testing.T) {
		r := Range{Min: gofakeit.Float64Range(-96, -1), Max: gofakeit.Float64Range(0, 12)}
		for range 100 {
			p := gofakeit.Float64Range(0, 100)
			level := r.Level(p)
			assert.GreaterOrEqual(t, level, r.Min)
			assert.LessOrEqual(t, level, r.Max)
			assert.InDelta(t, p, (level-r.Min)/(r.Max-r.Min)*100, 1e-9)
		}
	})
}

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(Range{Min: -10, Max: 0})
	assert.Equal(t, 0.0, m.Level())

	r, err := m.VolumeRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, Range{Min: -10, Max: 0}, r)

	require.NoError(t, m.SetMasterVolumeLevel(ctx, -5))
	require.NoError(t, m.SetMasterVolumeLevel(ctx, -2.5))
	assert.Equal(t, -2.5, m.Level())
	assert.Equal(t, []float64{-5, -2.5}, m.Writes())

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
	_, err = m.VolumeRange(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.SetMasterVolumeLevel(ctx, 0), ErrClosed)
	assert.Len(t, m.Writes(), 2)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ep, err := Open(Config{Kind: "memory"})
	require.NoError(t, err)
	r, err := ep.VolumeRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultMemoryRange, r)
	require.NoError(t, ep.Close())

	ep, err = Open(Config{Kind: "MEMORY", Range: Range{Min: 0, Max: 100}})
	require.NoError(t, err)
	r, err = ep.VolumeRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, Range{Min: 0, Max: 100}, r)

	_, err = Open(Config{Kind: "pulse"})
	assert.EqualError(t, err, "unsupported mixer kind: pulse")
}
