//Package ball keeps the recent trajectory of the ball in frame and map coordinates.
package ball

import (
	"errors"
	"fmt"
	"image"

	"github.com/chenBenjamin97/tactical-map/pkg/geometry"
)

//ErrMisaligned means the frame and map sequences of a History have different lengths
var ErrMisaligned = errors.New("frame and map trajectories are not aligned")

//History is the ball trajectory. Frame[i] and Plane[i] are the same sample,
//oldest first. After every Update len(Frame) <= MaxLength.
type History struct {
	Frame     []image.Point
	Plane     []image.Point
	MaxLength int
}

//NewHistory returns an empty trajectory keeping at most maxLength samples
func NewHistory(maxLength int) *History {
	return &History{
		Frame:     make([]image.Point, 0, maxLength),
		Plane:     make([]image.Point, 0, maxLength),
		MaxLength: maxLength,
	}
}

//Len returns the number of stored samples
func (h *History) Len() int {
	return len(h.Frame)
}

//Reset drops every sample
func (h *History) Reset() {
	h.Frame = h.Frame[:0]
	h.Plane = h.Plane[:0]
}

//Last returns the most recent frame position
func (h *History) Last() (image.Point, bool) {
	if len(h.Frame) == 0 {
		return image.Point{}, false
	}
	return h.Frame[len(h.Frame)-1], true
}

//Samples returns copies of both sequences
func (h *History) Samples() ([]image.Point, []image.Point) {
	return append([]image.Point(nil), h.Frame...), append([]image.Point(nil), h.Plane...)
}

//Update adds one ball observation to h.
//
//A nil frame or plane position means the ball was not seen and leaves the
//samples alone. Otherwise the sample is appended when it lies closer than
//distanceThreshold (in frame pixels) to the last stored one; a larger jump is
//taken as the ball being picked up somewhere else and the trajectory restarts
//from this sample. Finally the oldest samples are dropped until at most
//maxLength remain. Positions are stored truncated to integer pixels.
func Update(h *History, frame, plane *geometry.Point, distanceThreshold float64, maxLength int) error {
	if len(h.Frame) != len(h.Plane) {
		return fmt.Errorf("Update: %w: %d frame samples, %d map samples", ErrMisaligned, len(h.Frame), len(h.Plane))
	}
	h.MaxLength = maxLength

	if frame != nil && plane != nil {
		src, dst := frame.ImagePoint(), plane.ImagePoint()
		last, ok := h.Last()
		switch {
		case !ok:
			h.Frame = append(h.Frame, src)
			h.Plane = append(h.Plane, dst)
		case frame.Distance(geometry.FromImagePoint(last)) < distanceThreshold:
			h.Frame = append(h.Frame, src)
			h.Plane = append(h.Plane, dst)
		default:
			h.Frame = append(h.Frame[:0], src)
			h.Plane = append(h.Plane[:0], dst)
		}
	}

	if maxLength < 0 {
		maxLength = 0
	}
	if drop := len(h.Frame) - maxLength; drop > 0 {
		h.Frame = append(h.Frame[:0], h.Frame[drop:]...)
		h.Plane = append(h.Plane[:0], h.Plane[drop:]...)
	}

	return nil
}
