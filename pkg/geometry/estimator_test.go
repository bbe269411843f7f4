package geometry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keypointSet(shift Point, labels ...string) ([]string, []Point, []Point) {
	frame := map[string]Point{
		"TLC": Pt(100, 80), "TRC": Pt(1180, 90), "BRC": Pt(1150, 660), "BLC": Pt(120, 650),
		"CTM": Pt(640, 60), "CBM": Pt(630, 700), "CC": Pt(650, 370),
	}
	framePts := make([]Point, len(labels))
	planePts := make([]Point, len(labels))
	for i, l := range labels {
		framePts[i] = Pt(frame[l].X+shift.X, frame[l].Y+shift.Y)
		planePts[i] = perspective.Project(frame[l])
	}
	return append([]string(nil), labels...), framePts, planePts
}

func TestEstimate_TooFewKeypoints(t *testing.T) {
	t.Parallel()

	labels, framePts, planePts := keypointSet(Point{}, "TLC", "TRC", "BRC")
	m, updated, next, err := Estimate(labels, framePts, planePts, HomographyState{}, 7, 1)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.False(t, updated)
	assert.Equal(t, HomographyState{}, next)
}

func TestEstimate_FirstFrameAlwaysUpdates(t *testing.T) {
	t.Parallel()

	labels, framePts, planePts := keypointSet(Point{}, "TLC", "TRC", "BRC", "BLC")

	prev, _, state, err := Estimate(labels, framePts, planePts, HomographyState{}, 7, 1)
	require.NoError(t, err)
	require.NotNil(t, prev)

	//same keypoints, but frame index 1 forces a recomputation
	m, updated, _, err := Estimate(labels, framePts, planePts, state, 7, 1)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.NotNil(t, m)
}

func TestEstimate_ReusesStableTransform(t *testing.T) {
	t.Parallel()

	labels, framePts, planePts := keypointSet(Point{}, "TLC", "TRC", "BRC", "BLC", "CC")
	first, updated, state, err := Estimate(labels, framePts, planePts, HomographyState{}, 7, 1)
	require.NoError(t, err)
	require.True(t, updated)
	require.NotNil(t, first)
	assert.Equal(t, first, state.Active())

	m, updated, next, err := Estimate(labels, framePts, planePts, state, 7, 2)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Nil(t, m)
	assert.Empty(t, cmp.Diff(state, next))
}

func TestEstimate_MatchesByLabelNotIndex(t *testing.T) {
	t.Parallel()

	labels, framePts, planePts := keypointSet(Point{}, "TLC", "TRC", "BRC", "BLC")
	_, _, state, err := Estimate(labels, framePts, planePts, HomographyState{}, 7, 1)
	require.NoError(t, err)

	//same positions, different detection order and one extra keypoint
	labels, framePts, planePts = keypointSet(Point{}, "CC", "BLC", "BRC", "TRC", "TLC")
	_, updated, _, err := Estimate(labels, framePts, planePts, state, 7, 2)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestEstimate_Displacement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		shift   Point
		updated bool
	}{
		{"within tolerance", Pt(3, 4), false},
		{"at tolerance", Pt(7, 0), false},
		{"beyond tolerance", Pt(10, 0), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			labels, framePts, planePts := keypointSet(Point{}, "TLC", "TRC", "BRC", "BLC")
			_, _, state, err := Estimate(labels, framePts, planePts, HomographyState{}, 7, 1)
			require.NoError(t, err)

			labels, framePts, planePts = keypointSet(tc.shift, "TLC", "TRC", "BRC", "BLC")
			m, updated, next, err := Estimate(labels, framePts, planePts, state, 7, 2)
			require.NoError(t, err)
			assert.Equal(t, tc.updated, updated)
			if tc.updated {
				require.NotNil(t, m)
				assert.Equal(t, framePts, next.CachedFramePoints)
			} else {
				assert.Equal(t, state.CachedFramePoints, next.CachedFramePoints)
			}
		})
	}
}

func TestEstimate_LowOverlapForcesUpdate(t *testing.T) {
	t.Parallel()

	labels, framePts, planePts := keypointSet(Point{}, "TLC", "TRC", "BRC", "BLC")
	_, _, state, err := Estimate(labels, framePts, planePts, HomographyState{}, 7, 1)
	require.NoError(t, err)

	//only TLC, BRC and BLC are shared with the cache
	labels, framePts, planePts = keypointSet(Point{}, "TLC", "BRC", "BLC", "CTM", "CBM")
	m, updated, next, err := Estimate(labels, framePts, planePts, state, 7, 2)
	require.NoError(t, err)
	assert.True(t, updated)
	require.NotNil(t, m)
	assert.Equal(t, labels, next.CachedLabels)
}

func TestEstimate_RejectedFitKeepsCache(t *testing.T) {
	t.Parallel()

	labels, framePts, planePts := keypointSet(Point{}, "TLC", "TRC", "BRC", "BLC")
	_, _, state, err := Estimate(labels, framePts, planePts, HomographyState{}, 7, 1)
	require.NoError(t, err)

	collinear := []Point{Pt(0, 0), Pt(10, 10), Pt(20, 20), Pt(30, 30)}
	m, updated, next, err := Estimate([]string{"A", "B", "C", "D"}, collinear, planePts, state, 7, 2)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Nil(t, m)
	assert.Equal(t, state, next)
	assert.NotNil(t, next.Active())
}

func TestEstimate_LengthMismatch(t *testing.T) {
	t.Parallel()

	labels, framePts, planePts := keypointSet(Point{}, "TLC", "TRC", "BRC", "BLC")
	_, _, _, err := Estimate(labels, framePts[:3], planePts, HomographyState{}, 7, 1)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSplit(t *testing.T) {
	t.Parallel()

	labels, framePts, planePts := Split([]Keypoint{
		{Label: "A", Frame: Pt(1, 2), Plane: Pt(3, 4)},
		{Label: "B", Frame: Pt(5, 6), Plane: Pt(7, 8)},
	})
	assert.Equal(t, []string{"A", "B"}, labels)
	assert.Equal(t, []Point{Pt(1, 2), Pt(5, 6)}, framePts)
	assert.Equal(t, []Point{Pt(3, 4), Pt(7, 8)}, planePts)
}
