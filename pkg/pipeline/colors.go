package pipeline

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

//trackPalette is cycled through in order of first appearance of each track
var trackPalette = []color.RGBA{
	{R: 255, G: 0, B: 0, A: 255},     //red
	{R: 0, G: 0, B: 255, A: 255},     //blue
	{R: 0, G: 255, B: 0, A: 255},     //green
	{R: 255, G: 255, B: 0, A: 255},   //yellow
	{R: 128, G: 0, B: 128, A: 255},   //purple
	{R: 255, G: 165, B: 0, A: 255},   //orange
	{R: 255, G: 192, B: 203, A: 255}, //pink
	{R: 0, G: 255, B: 255, A: 255},   //cyan
	{R: 255, G: 0, B: 255, A: 255},   //magenta
	{R: 165, G: 42, B: 42, A: 255},   //brown
}

//goldenAngle spreads generated hues as far apart as possible
const goldenAngle = 137.50776405003785

//TrackColors gives every track identifier a display color that stays the same
//for the whole run. The first len(trackPalette) tracks get the fixed palette,
//later ones a generated hue, so two tracks never share a color.
type TrackColors struct {
	assigned map[int]color.RGBA
}

//NewTrackColors returns an empty assignment
func NewTrackColors() *TrackColors {
	return &TrackColors{assigned: make(map[int]color.RGBA)}
}

//ColorFor returns the color of track id, assigning the next one when id is new
func (tc *TrackColors) ColorFor(id int) color.RGBA {
	if c, ok := tc.assigned[id]; ok {
		return c
	}

	n := len(tc.assigned)
	var c color.RGBA
	if n < len(trackPalette) {
		c = trackPalette[n]
	} else {
		hue := math.Mod(float64(n-len(trackPalette)+1)*goldenAngle, 360)
		r, g, b := colorful.Hsv(hue, 0.75, 0.9).RGB255()
		c = color.RGBA{R: r, G: g, B: b, A: 255}
	}

	tc.assigned[id] = c
	return c
}

//Len returns the number of tracks seen so far
func (tc *TrackColors) Len() int {
	return len(tc.assigned)
}
