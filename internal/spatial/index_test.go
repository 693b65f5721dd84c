package spatial

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Nearest2D(t *testing.T) {
	idx, err := NewIndex([]Point{
		Point2D(30.00, 40.00),
		Point2D(30.05, 40.00),
		Point2D(31.00, 41.00),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	m, ok := idx.Nearest(Point2D(30.04, 40.00), 0.02)
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	assert.InDelta(t, 0.01, m.Distance, 1e-12)

	_, ok = idx.Nearest(Point2D(30.5, 40.5), 0.02)
	assert.False(t, ok, "closest point is ~0.7 degrees away")
}

func TestIndex_Nearest3D(t *testing.T) {
	const timeScale = 0.01
	idx, err := NewIndex([]Point{
		Point3D(30.00, 40.00, 160, timeScale),
		Point3D(30.00, 40.00, 170, timeScale),
	})
	require.NoError(t, err)

	m, ok := idx.Nearest(Point3D(30.00, 40.00, 168, timeScale), 0.05)
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	assert.InDelta(t, 0.02, m.Distance, 1e-12)
}

func TestIndex_RadiusBoundaryIsInclusive(t *testing.T) {
	idx, err := NewIndex([]Point{Point2D(30.02, 40.00)})
	require.NoError(t, err)

	_, ok := idx.Nearest(Point2D(30.00, 40.00), 0.02)
	assert.True(t, ok)
}

func TestIndex_Empty(t *testing.T) {
	idx, err := NewIndex(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())

	_, ok := idx.Nearest(Point2D(0, 0), math.Inf(1))
	assert.False(t, ok)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	_, err := NewIndex([]Point{Point2D(0, 0), {1, 2, 3}})
	require.Error(t, err)

	idx, err := NewIndex([]Point{Point2D(0, 0)})
	require.NoError(t, err)
	_, ok := idx.Nearest(Point{0, 0, 0}, 1)
	assert.False(t, ok)
}

func TestIndex_DoesNotReorderInput(t *testing.T) {
	points := []Point{Point2D(3, 3), Point2D(1, 1), Point2D(2, 2)}
	_, err := NewIndex(points)
	require.NoError(t, err)
	assert.Equal(t, []Point{Point2D(3, 3), Point2D(1, 1), Point2D(2, 2)}, points)
}

func TestIndex_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	points := make([]Point, 500)
	for i := range points {
		points[i] = Point3D(30+rng.Float64(), 40+rng.Float64(), rng.IntN(366), 0.01)
	}
	idx, err := NewIndex(points)
	require.NoError(t, err)

	const radius = 0.1
	for range 200 {
		q := Point3D(30+rng.Float64(), 40+rng.Float64(), rng.IntN(366), 0.01)

		best := math.Inf(1)
		for _, p := range points {
			best = math.Min(best, Distance(q, p))
		}

		m, ok := idx.Nearest(q, radius)
		if best > radius {
			assert.False(t, ok, "no point within radius but index returned %v", m)
			continue
		}
		require.True(t, ok)
		assert.InDelta(t, best, m.Distance, 1e-12)
		assert.InDelta(t, m.Distance, Distance(q, points[m.Index]), 1e-12)
	}
}

func TestIndex_TieBreakIsDeterministic(t *testing.T) {
	points := []Point{Point2D(-1, 0), Point2D(1, 0), Point2D(0, 1), Point2D(0, -1)}

	first, err := NewIndex(points)
	require.NoError(t, err)
	want, ok := first.Nearest(Point2D(0, 0), 2)
	require.True(t, ok)

	for range 10 {
		idx, err := NewIndex(points)
		require.NoError(t, err)
		got, ok := idx.Nearest(Point2D(0, 0), 2)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}
