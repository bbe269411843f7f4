package video

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chenBenjamin97/tactical-map/pkg/pipeline"
	"github.com/chenBenjamin97/tactical-map/pkg/pitch"
	"github.com/chenBenjamin97/tactical-map/pkg/team"
	"gocv.io/x/gocv"
)

var whiteRGB = color.RGBA{255, 255, 255, 0}
var blackRGB = color.RGBA{0, 0, 0, 0}
var ballColor = color.RGBA{255, 0, 0, 0}
var keypointColor = color.RGBA{255, 255, 102, 0}
var otherColor = color.RGBA{128, 128, 128, 0}

const swatchSize = 10

//plotPlayerOnFrame plots given player's bounding box in it's team color and writes above it the track ID,
//team name and detection confidence. The player's palette is drawn as small swatches under the box
func plotPlayerOnFrame(frame *gocv.Mat, p pipeline.Player, refs team.References) {
	plotColor := refs.Display(p.Team)
	boundingBoxRect := p.Detection.Rect()
	gocv.Rectangle(frame, boundingBoxRect, plotColor, 2)

	text := fmt.Sprintf("%d %s %.0f%%", p.Detection.ID, refs.Name(p.Team), p.Detection.Confidence*100)
	plotLabel(frame, text, boundingBoxRect.Min, p.TrackColor)

	for i, c := range p.Palette {
		swatch := image.Rect(boundingBoxRect.Min.X+i*swatchSize, boundingBoxRect.Max.Y+2, boundingBoxRect.Min.X+(i+1)*swatchSize, boundingBoxRect.Max.Y+2+swatchSize)
		gocv.Rectangle(frame, swatch, c, -1) //thickness -1 == filled rectangle
		gocv.Rectangle(frame, swatch, blackRGB, 1)
	}
}

//plotObjectOnFrame plots a referee, ball or any other non player detection
func plotObjectOnFrame(frame *gocv.Mat, obj *pipeline.ObjectBoundingBox, name string, plotColor color.RGBA) {
	boundingBoxRect := obj.Rect()
	gocv.Rectangle(frame, boundingBoxRect, plotColor, 2)
	plotLabel(frame, fmt.Sprintf("%s %.0f%%", name, obj.Confidence*100), boundingBoxRect.Min, plotColor)
}

//plotLabel writes text on a filled background whose bottom left corner is at given point
func plotLabel(frame *gocv.Mat, text string, at image.Point, background color.RGBA) {
	size := gocv.GetTextSize(text, gocv.FontHersheyPlain, 1, 1)
	textBackgroundRect := image.Rect(at.X, at.Y-size.Y-8, at.X+size.X+6, at.Y)
	gocv.Rectangle(frame, textBackgroundRect, background, -1)
	gocv.PutText(frame, text, image.Pt(at.X+3, at.Y-4), gocv.FontHersheyPlain, 1, contrastColor(background), 1)
}

//contrastColor returns black or white, whichever reads better above c
func contrastColor(c color.RGBA) color.RGBA {
	if 0.299*float64(c.R)+0.587*float64(c.G)+0.114*float64(c.B) > 150 {
		return blackRGB
	}
	return whiteRGB
}

//plotKeypointsOnFrame plots the pitch keypoints boxes with their labels
func plotKeypointsOnFrame(frame *gocv.Mat, keypoints []*pipeline.KeypointBoundingBox, table *pitch.Table) {
	for _, kb := range keypoints {
		label, ok := table.KeypointLabel(kb.Label)
		if !ok {
			continue
		}
		rect := kb.Rect()
		gocv.Rectangle(frame, rect, keypointColor, 1)
		gocv.PutText(frame, label, image.Pt(rect.Max.X+2, rect.Min.Y), gocv.FontHersheyPlain, 0.8, keypointColor, 1)
	}
}

//plotTrajectory connects consecutive trajectory samples, oldest first
func plotTrajectory(mat *gocv.Mat, track []image.Point, plotColor color.RGBA) {
	for i := 1; i < len(track); i++ {
		gocv.Line(mat, track[i-1], track[i], plotColor, 2)
	}
}

//annotateFrame plots on the camera frame everything found in it
func annotateFrame(frame *gocv.Mat, res *pipeline.FrameResult, dets *pipeline.FrameDetections, table *pitch.Table, refs team.References) {
	plotKeypointsOnFrame(frame, dets.Keypoints, table)

	for _, p := range res.Players {
		plotPlayerOnFrame(frame, p, refs)
	}

	for _, obj := range res.Others {
		plotObjectOnFrame(frame, obj, table.ObjectLabel(obj.Class), otherColor)
	}

	if res.Ball != nil {
		gocv.Circle(frame, res.Ball.ImagePoint(), 8, ballColor, 2)
	}

	plotTrajectory(frame, res.TrackFrame, ballColor)
}

//plotTacticalMap plots the projected players (team color, track color ring) and the ball on a copy of the map
func plotTacticalMap(mapMat *gocv.Mat, res *pipeline.FrameResult, refs team.References) {
	for _, p := range res.Players {
		if p.Map == nil {
			continue
		}
		center := p.Map.ImagePoint()
		gocv.Circle(mapMat, center, 8, refs.Display(p.Team), -1)
		gocv.Circle(mapMat, center, 9, p.TrackColor, 2)
	}

	plotTrajectory(mapMat, res.TrackMap, ballColor)

	if res.BallMap != nil {
		center := res.BallMap.ImagePoint()
		gocv.Circle(mapMat, center, 6, whiteRGB, -1)
		gocv.Circle(mapMat, center, 7, ballColor, 2)
	}
}

//plotFPS writes the processing rate in the top left corner
func plotFPS(mat *gocv.Mat, fps float64) {
	plotLabel(mat, fmt.Sprintf("FPS: %.1f", fps), image.Pt(10, 30), blackRGB)
}

//fitWithin returns mat downscaled (keeping aspect ratio) so it is at most maxWidth x maxHeight.
//The returned Mat is always a new one and should be closed by the caller
func fitWithin(mat gocv.Mat, maxWidth, maxHeight int) gocv.Mat {
	res := gocv.NewMat()
	w, h := mat.Cols(), mat.Rows()
	if w <= maxWidth && h <= maxHeight {
		mat.CopyTo(&res)
		return res
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	gocv.Resize(mat, &res, image.Pt(int(float64(w)*scale), int(float64(h)*scale)), 0, 0, gocv.InterpolationArea)
	return res
}

//combine places the camera frame and the tactical map side by side, the map scaled to the frame's height
func combine(frame, mapMat gocv.Mat) gocv.Mat {
	scaledMap := gocv.NewMat()
	defer scaledMap.Close()

	height := frame.Rows()
	width := mapMat.Cols() * height / mapMat.Rows()
	gocv.Resize(mapMat, &scaledMap, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	res := gocv.NewMat()
	gocv.Hconcat(frame, scaledMap, &res)
	return res
}
