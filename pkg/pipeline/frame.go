package pipeline

import (
	"image"
	"image/color"
	"log"

	"github.com/chenBenjamin97/tactical-map/pkg/ball"
	"github.com/chenBenjamin97/tactical-map/pkg/geometry"
	"github.com/chenBenjamin97/tactical-map/pkg/pitch"
	"github.com/chenBenjamin97/tactical-map/pkg/team"
	"github.com/chenBenjamin97/tactical-map/pkg/utils"
)

//Player is one detected player of a frame
type Player struct {
	Detection  *ObjectBoundingBox
	Palette    team.Palette
	Team       int             //team.UnknownTeam when the palette is empty
	TrackColor color.RGBA      //stable per track identifier
	Map        *geometry.Point //nil when no transform is available yet
}

//FrameResult is the outcome of processing one frame
type FrameResult struct {
	FrameNumber int
	Matrix      *geometry.Matrix //transform used for this frame, nil before the first successful fit
	Updated     bool             //the transform was recomputed on this frame
	Keypoints   []geometry.Keypoint
	Players     []Player
	Others      []*ObjectBoundingBox //referees and any class but players and ball
	Ball        *geometry.Point      //frame position of the first ball detection
	BallMap     *geometry.Point
	TrackFrame  []image.Point //ball trajectory, oldest first
	TrackMap    []image.Point
}

//FrameProcessor runs the per frame analysis. Frames must be given in order:
//the transform reuse decision and the ball trajectory both depend on the previous frame.
type FrameProcessor struct {
	params     Params
	table      *pitch.Table
	refs       team.References
	homography geometry.HomographyState
	ball       *ball.Tracker
	colors     *TrackColors
}

//NewFrameProcessor returns a processor at the start of a run
func NewFrameProcessor(params Params, table *pitch.Table, refs team.References) *FrameProcessor {
	return &FrameProcessor{
		params: params,
		table:  table,
		refs:   refs,
		ball:   ball.NewTracker(params.Ball),
		colors: NewTrackColors(),
	}
}

//Process analyses one frame. frameIndex starts at 1. img is the decoded frame used for
//the players palettes; a nil img leaves every player in team.UnknownTeam.
func (fp *FrameProcessor) Process(frameIndex int, dets *FrameDetections, img image.Image) (*FrameResult, error) {
	res := &FrameResult{FrameNumber: frameIndex}

	fp.ball.BeginFrame()

	res.Keypoints = fp.keypoints(dets.Keypoints)
	labels, framePts, planePts := geometry.Split(res.Keypoints)

	m, updated, next, err := geometry.Estimate(labels, framePts, planePts, fp.homography, fp.params.KeypointTolerance, frameIndex)
	if err != nil {
		return nil, err
	}
	if updated && m == nil {
		log.Printf("Process: Frame %d: transform recomputation rejected, keeping the previous one", frameIndex)
	}
	fp.homography = next
	res.Updated = updated
	res.Matrix = fp.homography.Active()

	var ballDet *ObjectBoundingBox
	for _, obj := range dets.Objects {
		switch obj.Class {
		case utils.PlayerClass:
			res.Players = append(res.Players, fp.player(obj, img))
		case utils.BallClass:
			if ballDet == nil {
				ballDet = obj
			}
		default:
			res.Others = append(res.Others, obj)
		}
	}

	if res.Matrix != nil {
		for i := range res.Players {
			p := res.Matrix.Project(res.Players[i].Detection.GroundPoint())
			res.Players[i].Map = &p
		}

		fp.ball.Seen(ballDet != nil)
		if ballDet != nil {
			src := ballDet.Center()
			dst := res.Matrix.Project(src)
			res.Ball, res.BallMap = &src, &dst

			if fp.params.TrackBall {
				if err := fp.ball.Observe(res.Ball, res.BallMap); err != nil {
					return nil, err
				}
			}
		}
	}

	res.TrackFrame, res.TrackMap = fp.ball.History().Samples()

	return res, nil
}

func (fp *FrameProcessor) keypoints(boxes []*KeypointBoundingBox) []geometry.Keypoint {
	kps := make([]geometry.Keypoint, 0, len(boxes))
	for _, kb := range boxes {
		if kp, ok := fp.table.Observation(kb.Label, kb.Center()); ok {
			kps = append(kps, kp)
		}
	}
	return kps
}

func (fp *FrameProcessor) player(obj *ObjectBoundingBox, img image.Image) Player {
	var palette team.Palette
	if img != nil {
		palette = team.ExtractPalette(img, obj.Rect(), fp.params.PaletteColors)
	}

	return Player{
		Detection:  obj,
		Palette:    palette,
		Team:       team.Classify(palette, fp.refs),
		TrackColor: fp.colors.ColorFor(obj.ID),
	}
}

//TeamCounts returns how many players of res were assigned to each team, unknown ones under team.UnknownTeam
func (res *FrameResult) TeamCounts() map[int]int {
	counts := make(map[int]int)
	for _, p := range res.Players {
		counts[p.Team]++
	}
	return counts
}
