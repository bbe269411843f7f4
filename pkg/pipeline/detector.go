package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"os/exec"
	"strconv"
	"strings"
)

//DetectorConfig describes the external detection process
type DetectorConfig struct {
	Python       string
	Script       string
	PlayerConf   float64
	KeypointConf float64
}

//RunDetector executes the python script running both YOLO models (players/ball with BoT-SORT tracking,
//and pitch keypoints) over the video and sends the detections of each frame through framesC as soon
//as the frame is complete, so frames can be processed while the detector is still running.
//Because this function is the only one who writes to framesC, it closes it before returning.
func RunDetector(ctx context.Context, cfg DetectorConfig, videoPath string, framesC chan<- *FrameDetections) {
	defer close(framesC)

	python := cfg.Python
	if python == "" {
		python = "python3"
	}

	cmd := exec.CommandContext(ctx, python, cfg.Script,
		"--video", videoPath,
		"--player-conf", strconv.FormatFloat(cfg.PlayerConf, 'f', -1, 64),
		"--keypoint-conf", strconv.FormatFloat(cfg.KeypointConf, 'f', -1, 64))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Printf("RunDetector: Error, got '%v'", err)
		return
	}
	defer stdout.Close()

	if err := cmd.Start(); err != nil {
		log.Printf("RunDetector: Error, got '%v'", err)
		return
	}

	if err := ReadDetections(ctx, stdout, framesC); err != nil {
		log.Printf("RunDetector: Stopped reading detections, got '%v'", err)
	}

	if err := cmd.Wait(); err != nil {
		log.Printf("RunDetector: Error waiting python's process, Got '%v'", err)
	}
}

//ReadDetections parses the detector's standard output:
//
//	Frame #: 12
//	{"Label": 3, "X": 640.2, "Y": 360.9, "W": 12, "H": 10}
//	{"Class": 0, "ID": 7, "Confidence": 0.91, "Xmin": 10, "Ymin": 20, "Xmax": 40, "Ymax": 90}
//	EOF
//
//Keypoint lines start with the "Label" key, object lines with the "Class" key. Objects
//printed without an ID get their index in the frame instead. Any other line is skipped.
func ReadDetections(ctx context.Context, r io.Reader, framesC chan<- *FrameDetections) error {
	scanner := bufio.NewScanner(r)

	var current *FrameDetections
	framesCounter := 0

	send := func() error {
		if current == nil {
			return nil
		}
		select {
		case framesC <- current:
			current = nil
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "Frame #:"):
			if err := send(); err != nil {
				return err
			}
			framesCounter++
			current = NewFrameDetections(framesCounter)

		case line == "EOF": //finished to read all frames
			return send()

		case current == nil: //nothing before the first frame marker is data

		case strings.HasPrefix(line, "{\"Label\":"):
			kp := KeypointBoundingBox{}
			if err := json.Unmarshal([]byte(line), &kp); err == nil {
				current.Keypoints = append(current.Keypoints, &kp)
			} else {
				log.Printf("ReadDetections: Error, got '%v'", err)
			}

		case strings.HasPrefix(line, "{\"Class\":"):
			obj := ObjectBoundingBox{ID: -1}
			if err := json.Unmarshal([]byte(line), &obj); err == nil {
				if obj.ID < 0 { //tracker lost this object, fall back to its detection index
					obj.ID = len(current.Objects)
				}
				current.Objects = append(current.Objects, &obj)
			} else {
				log.Printf("ReadDetections: Error, got '%v'", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	return send()
}
