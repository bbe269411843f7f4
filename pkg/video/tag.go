package video

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/chenBenjamin97/tactical-map/pkg/pipeline"
	"github.com/chenBenjamin97/tactical-map/pkg/pitch"
	"github.com/chenBenjamin97/tactical-map/pkg/store"
	"github.com/chenBenjamin97/tactical-map/pkg/utils"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gocv.io/x/gocv"
)

//progressEvery is the number of frames between two progress reports
const progressEvery = 25

//Tag reads a video from given source, runs the detector over it and plots on it's frames the players teams, the ball
//and their positions on the tactical map. The produced videos are saved in 'ready' directory from configuration file,
//named after the source and runID (a new one is generated when empty).
//srcVideoName should include file's extension ('.mp4', etc.). Cancelling ctx stops the run between two frames.
func Tag(ctx context.Context, srcVideoName, runID string, rec store.RunRecorder) {
	if runID == "" {
		runID = uuid.New().String()
	}

	record := func(err error) {
		if err != nil {
			log.Printf("Tag: Error recording run '%s', got '%v'", runID, err)
		}
	}

	record(rec.SetStatus(runID, utils.RunRunning, ""))

	outputs, err := tag(ctx, srcVideoName, runID, rec)
	record(rec.SetOutputs(runID, outputs))

	switch {
	case errors.Is(err, context.Canceled):
		log.Printf("Tag: Run '%s' of '%s' cancelled", runID, srcVideoName)
		record(rec.SetStatus(runID, utils.RunCancelled, ""))
	case err != nil:
		log.Printf("Tag: Error tagging video file '%s', got '%v'", srcVideoName, err)
		record(rec.SetStatus(runID, utils.RunFailed, err.Error()))
	default:
		record(rec.SetStatus(runID, utils.RunDone, ""))
	}
}

func tag(ctx context.Context, srcVideoName, runID string, rec store.RunRecorder) ([]string, error) {
	params, err := pipeline.LoadParams()
	if err != nil {
		return nil, err
	}

	table, err := pitch.Load(viper.GetString("pitch.keypoints_map"), viper.GetString("pitch.keypoint_classes"), viper.GetString("pitch.object_classes"))
	if err != nil {
		return nil, err
	}

	refs, err := pipeline.LoadReferences(params.ColorsPerTeam)
	if err != nil {
		return nil, err
	}

	tacticalMap := gocv.IMRead(viper.GetString("pitch.tactical_map"), gocv.IMReadColor)
	if tacticalMap.Empty() {
		return nil, fmt.Errorf("could not read tactical map '%s'", viper.GetString("pitch.tactical_map"))
	}
	defer tacticalMap.Close()

	srcVideoPath := path.Join(viper.GetString("directory.source"), srcVideoName)
	cap, err := gocv.VideoCaptureFile(srcVideoPath)
	if err != nil {
		return nil, err
	}
	defer cap.Close()

	outputs := NewOutputs(LoadOutputConfig(), utils.OutputBaseName(srcVideoName, runID), cap.Get(gocv.VideoCaptureFPS))

	//the detector stops as soon as this function returns, whatever the reason
	detectorCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	framesC := make(chan *pipeline.FrameDetections)
	go pipeline.RunDetector(detectorCtx, params.Detector, srcVideoPath, framesC)

	processor := pipeline.NewFrameProcessor(params, table, refs)

	frameMat := gocv.NewMat()
	defer frameMat.Close()

	framesCounter := 0
	start := time.Now()

	err = func() error {
		for dets := range framesC {
			if err := ctx.Err(); err != nil {
				return err
			}

			if !cap.Read(&frameMat) || frameMat.Empty() { //finished to read all video's frames
				return nil
			}
			framesCounter++

			img, convErr := frameMat.ToImage()
			if convErr != nil {
				log.Printf("Tag: Frame %d: could not convert frame, players stay unclassified, got '%v'", framesCounter, convErr)
				img = nil
			}

			res, err := processor.Process(framesCounter, dets, img)
			if err != nil {
				return fmt.Errorf("frame %d: %w", framesCounter, err)
			}

			mapMat := tacticalMap.Clone()
			annotateFrame(&frameMat, res, dets, table, refs)
			plotTacticalMap(&mapMat, res, refs)
			plotFPS(&frameMat, float64(framesCounter)/time.Since(start).Seconds())

			err = outputs.Write(frameMat, mapMat)
			mapMat.Close()
			if err != nil {
				return err
			}

			if framesCounter%progressEvery == 0 {
				if err := rec.SetProgress(runID, framesCounter); err != nil {
					log.Printf("Tag: Error, got '%v'", err)
				}
			}
		}

		return ctx.Err()
	}()

	if perr := rec.SetProgress(runID, framesCounter); perr != nil {
		log.Printf("Tag: Error, got '%v'", perr)
	}

	return outputs.Close(), err
}
