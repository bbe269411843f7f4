package geometry

import (
	"fmt"
	"math"
	"sort"
)

//Keypoint is one detected pitch landmark: its label, where it was seen in the
//frame and where it sits on the tactical map
type Keypoint struct {
	Label string
	Frame Point
	Plane Point
}

//HomographyState carries the frame to map transform from one frame to the next.
//It is only modified by a successful recomputation: frames that reuse the
//current transform leave the cached keypoints untouched.
type HomographyState struct {
	Matrix            *Matrix
	LastValid         *Matrix
	CachedLabels      []string
	CachedFramePoints []Point
}

//Active returns the transform to project with: the last one successfully computed, or nil
func (s HomographyState) Active() *Matrix {
	return s.LastValid
}

//Split unpacks keypoints into the parallel label, frame and plane sequences used by Estimate
func Split(kps []Keypoint) ([]string, []Point, []Point) {
	labels := make([]string, len(kps))
	framePts := make([]Point, len(kps))
	planePts := make([]Point, len(kps))
	for i, kp := range kps {
		labels[i] = kp.Label
		framePts[i] = kp.Frame
		planePts[i] = kp.Plane
	}
	return labels, framePts, planePts
}

//Estimate decides whether the frame to map transform has to be recomputed for
//this frame and recomputes it when it does.
//
//The transform is recomputed on the first frame, when nothing is cached, when
//3 or fewer labels are shared with the cached keypoints, or when the RMS
//displacement of the shared keypoints exceeds tolerance. It returns the new
//matrix (nil when the current one should be reused or the fit was rejected),
//whether a recomputation was attempted, and the next state. With 3 or fewer
//keypoints nothing can be fitted and the state is returned unchanged.
//
//The only error is ErrLengthMismatch, when labels, framePts and planePts differ in length.
func Estimate(labels []string, framePts, planePts []Point, state HomographyState, tolerance float64, frameIndex int) (*Matrix, bool, HomographyState, error) {
	if len(labels) != len(framePts) || len(labels) != len(planePts) {
		return nil, false, state, fmt.Errorf("Estimate: %w: %d labels, %d frame points, %d plane points", ErrLengthMismatch, len(labels), len(framePts), len(planePts))
	}
	if len(state.CachedLabels) != len(state.CachedFramePoints) {
		return nil, false, state, fmt.Errorf("Estimate: %w: %d cached labels, %d cached points", ErrLengthMismatch, len(state.CachedLabels), len(state.CachedFramePoints))
	}

	if len(labels) <= 3 {
		return nil, false, state, nil
	}

	if !needsUpdate(labels, framePts, state, tolerance, frameIndex) {
		return nil, false, state, nil
	}

	m, err := FitHomography(framePts, planePts)
	if err != nil {
		//recomputation failed: keep the previous transform and cache
		return nil, true, state, nil
	}

	next := HomographyState{
		Matrix:            &m,
		LastValid:         &m,
		CachedLabels:      append([]string(nil), labels...),
		CachedFramePoints: append([]Point(nil), framePts...),
	}

	return &m, true, next, nil
}

func needsUpdate(labels []string, framePts []Point, state HomographyState, tolerance float64, frameIndex int) bool {
	if frameIndex <= 1 || len(state.CachedLabels) == 0 {
		return true
	}

	current := indexByLabel(labels)
	cached := indexByLabel(state.CachedLabels)

	common := make([]string, 0, len(current))
	for label := range current {
		if _, ok := cached[label]; ok {
			common = append(common, label)
		}
	}
	if len(common) <= 3 {
		return true
	}
	sort.Strings(common)

	prev := make([]Point, len(common))
	curr := make([]Point, len(common))
	for i, label := range common {
		prev[i] = state.CachedFramePoints[cached[label]]
		curr[i] = framePts[current[label]]
	}

	return DisplacementRMS(prev, curr) > tolerance
}

//DisplacementRMS returns sqrt(mean(|a[i]-b[i]|^2)). a and b must have the same, non zero, length.
func DisplacementRMS(a, b []Point) float64 {
	var sum float64
	for i := range a {
		dx, dy := a[i].X-b[i].X, a[i].Y-b[i].Y
		sum += dx*dx + dy*dy
	}
	return math.Sqrt(sum / float64(len(a)))
}

//indexByLabel maps each label to the index of its first occurrence
func indexByLabel(labels []string) map[string]int {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, ok := idx[l]; !ok {
			idx[l] = i
		}
	}
	return idx
}
