package pipeline

import (
	"image"
	"math"

	"github.com/chenBenjamin97/tactical-map/pkg/geometry"
)

//KeypointBoundingBox is a pitch keypoint as printed by the detector, center based (x, y, w, h)
type KeypointBoundingBox struct {
	Label int
	X     float64
	Y     float64
	W     float64
	H     float64
}

//Center returns the keypoint center rounded to whole pixels, half to even
func (k *KeypointBoundingBox) Center() geometry.Point {
	return geometry.Pt(math.RoundToEven(k.X), math.RoundToEven(k.Y))
}

//Rect returns the keypoint box in corner form
func (k *KeypointBoundingBox) Rect() image.Rectangle {
	return image.Rect(int(k.X-k.W/2), int(k.Y-k.H/2), int(k.X+k.W/2), int(k.Y+k.H/2))
}

//ObjectBoundingBox is a player, referee or ball detection. ID is the tracker identifier.
type ObjectBoundingBox struct {
	Class      int
	ID         int
	Confidence float32
	Xmin       float64
	Ymin       float64
	Xmax       float64
	Ymax       float64
}

//Rect returns the box truncated to whole pixels
func (o *ObjectBoundingBox) Rect() image.Rectangle {
	return image.Rect(int(o.Xmin), int(o.Ymin), int(o.Xmax), int(o.Ymax))
}

//Center returns the box center
func (o *ObjectBoundingBox) Center() geometry.Point {
	return geometry.Pt((o.Xmin+o.Xmax)/2, (o.Ymin+o.Ymax)/2)
}

//GroundPoint returns the bottom center of the box, where the player touches the pitch
func (o *ObjectBoundingBox) GroundPoint() geometry.Point {
	return geometry.Pt((o.Xmin+o.Xmax)/2, o.Ymax)
}

//FrameDetections is everything the detector reported for one frame
type FrameDetections struct {
	FrameNumber int
	Keypoints   []*KeypointBoundingBox
	Objects     []*ObjectBoundingBox
}

//NewFrameDetections returns an empty frame
func NewFrameDetections(frameNum int) *FrameDetections {
	x := FrameDetections{}
	x.FrameNumber = frameNum
	x.Keypoints = make([]*KeypointBoundingBox, 0)
	x.Objects = make([]*ObjectBoundingBox, 0)
	return &x
}
