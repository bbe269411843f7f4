package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var perspective = Matrix{
	{1.2, 0.1, 30},
	{0.05, 0.9, 20},
	{0.0004, 0.0002, 1},
}

func frameCorners() []Point {
	return []Point{Pt(0, 0), Pt(1280, 0), Pt(1280, 720), Pt(0, 720)}
}

func TestProject(t *testing.T) {
	t.Parallel()

	t.Run("identity", func(t *testing.T) {
		p := Identity().Project(Pt(12.5, -3))
		assert.InDelta(t, 12.5, p.X, 1e-12)
		assert.InDelta(t, -3, p.Y, 1e-12)
	})

	t.Run("perspective divide", func(t *testing.T) {
		m := Matrix{{2, 0, 0}, {0, 2, 0}, {0, 0, 4}}
		p, w := m.ProjectW(Pt(10, 20))
		assert.InDelta(t, 4, w, 1e-12)
		assert.InDelta(t, 5, p.X, 1e-12)
		assert.InDelta(t, 10, p.Y, 1e-12)
	})

	t.Run("project all keeps order", func(t *testing.T) {
		m := Matrix{{1, 0, 5}, {0, 1, -5}, {0, 0, 1}}
		got := m.ProjectAll([]Point{Pt(0, 0), Pt(1, 1), Pt(2, 2)})
		assert.Equal(t, []Point{Pt(5, -5), Pt(6, -4), Pt(7, -3)}, got)
	})
}

func TestFitHomography_UnitSquare(t *testing.T) {
	t.Parallel()

	dst := []Point{Pt(0, 0), Pt(100, 0), Pt(100, 100), Pt(0, 100)}
	m, err := FitHomography(frameCorners(), dst)
	require.NoError(t, err)

	mid := m.Project(Pt(640, 360))
	assert.InDelta(t, 50, mid.X, 1e-6)
	assert.InDelta(t, 50, mid.Y, 1e-6)
	assert.InDelta(t, 1, m[2][2], 1e-12)
}

func TestFitHomography_RecoversCorrespondences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  []Point
	}{
		{"exact with 4 points", frameCorners()},
		{"least squares with 6 points", append(frameCorners(), Pt(640, 100), Pt(300, 500))},
		{"least squares with 9 points", []Point{
			Pt(100, 80), Pt(640, 60), Pt(1180, 90),
			Pt(90, 360), Pt(650, 370), Pt(1200, 350),
			Pt(120, 650), Pt(630, 700), Pt(1150, 660),
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dst := perspective.ProjectAll(tc.src)

			m, err := FitHomography(tc.src, dst)
			require.NoError(t, err)

			for i, p := range tc.src {
				got := m.Project(p)
				assert.InDelta(t, dst[i].X, got.X, 1e-6, "point %d x", i)
				assert.InDelta(t, dst[i].Y, got.Y, 1e-6, "point %d y", i)
			}
			assert.Less(t, ReprojectionRMS(m, tc.src, dst), 1e-6)

			for i := range m {
				for j := range m[i] {
					assert.InDelta(t, perspective[i][j], m[i][j], 1e-6)
				}
			}
		})
	}
}

func TestFitHomography_Rejects(t *testing.T) {
	t.Parallel()

	square := []Point{Pt(0, 0), Pt(100, 0), Pt(100, 100), Pt(0, 100)}

	tests := []struct {
		name string
		src  []Point
		dst  []Point
		want error
	}{
		{"too few points", frameCorners()[:3], square[:3], ErrTooFewPoints},
		{"length mismatch", frameCorners(), square[:3], ErrLengthMismatch},
		{"collinear source", []Point{Pt(0, 0), Pt(10, 10), Pt(20, 20), Pt(30, 30)}, square, ErrDegenerate},
		{"coincident source", []Point{Pt(5, 5), Pt(5, 5), Pt(5, 5), Pt(5, 5)}, square, ErrDegenerate},
		{"three collinear of four", []Point{Pt(0, 0), Pt(50, 0), Pt(100, 0), Pt(0, 100)}, square, ErrDegenerate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := FitHomography(tc.src, tc.dst)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
