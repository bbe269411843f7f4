package video

import (
	"fmt"
	"image"
	"log"
	"os"
	"os/exec"
	"path"

	"github.com/chenBenjamin97/tactical-map/pkg/utils"
	"github.com/spf13/viper"
	"gocv.io/x/gocv"
)

//OutputConfig selects which videos a run produces and where
type OutputConfig struct {
	SaveProcessed bool
	SaveTactical  bool
	SaveCombined  bool
	Resize        bool //resize combined frames to Width x Height
	Width         int
	Height        int
	TempDir       string
	ReadyDir      string
	Format        string //extension of the ready videos, without dot
}

//SetOutputDefaults registers the output defaults in viper
func SetOutputDefaults() {
	viper.SetDefault("output.save_processed", true)
	viper.SetDefault("output.save_tactical", true)
	viper.SetDefault("output.save_combined", true)
	viper.SetDefault("output.resize", false)
	viper.SetDefault("output.width", 1920)
	viper.SetDefault("output.height", 720)
	viper.SetDefault("video.prod_format", "mp4")
}

//LoadOutputConfig reads the output configuration
func LoadOutputConfig() OutputConfig {
	return OutputConfig{
		SaveProcessed: viper.GetBool("output.save_processed"),
		SaveTactical:  viper.GetBool("output.save_tactical"),
		SaveCombined:  viper.GetBool("output.save_combined"),
		Resize:        viper.GetBool("output.resize"),
		Width:         viper.GetInt("output.width"),
		Height:        viper.GetInt("output.height"),
		TempDir:       viper.GetString("directory.temp"),
		ReadyDir:      viper.GetString("directory.ready"),
		Format:        viper.GetString("video.prod_format"),
	}
}

//videoSink is one output video. The writer is created on the first frame, when its size is known.
//Frames are written as XVID (== MPEG-4 codec, '.avi' extension) to the temp directory and converted by ffmpeg on finish
type videoSink struct {
	name    string //ready video file name
	tmpPath string
	fps     float64
	writer  *gocv.VideoWriter
}

func newVideoSink(cfg OutputConfig, baseName, suffix string, fps float64) *videoSink {
	return &videoSink{
		name:    baseName + suffix + "." + cfg.Format,
		tmpPath: path.Join(cfg.TempDir, baseName+suffix+".avi"),
		fps:     fps,
	}
}

func (s *videoSink) write(frame gocv.Mat) error {
	if s.writer == nil {
		writer, err := gocv.VideoWriterFile(s.tmpPath, "XVID", s.fps, frame.Cols(), frame.Rows(), true)
		if err != nil {
			return fmt.Errorf("videoSink: Could not open '%s', got '%v'", s.tmpPath, err)
		}
		s.writer = writer
	}

	return s.writer.Write(frame)
}

//finish closes the writer and converts the temp file, returns false when nothing was written
func (s *videoSink) finish(readyDir string) (bool, error) {
	if s.writer == nil {
		return false, nil
	}
	s.writer.Close()
	s.writer = nil
	defer os.Remove(s.tmpPath) //remove '.avi' temp file

	//Convert to from 'avi' to 'mp4'. example:ffmpeg -i match.avi match.mp4
	outputVideoPath := path.Join(readyDir, s.name)
	cmd := exec.Command("ffmpeg", "-y", "-i", s.tmpPath, outputVideoPath)
	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("videoSink: Error from ffmpeg converting '%s', got '%v'", s.tmpPath, err)
	}

	return true, nil
}

//Outputs holds every video a run writes to
type Outputs struct {
	cfg   OutputConfig
	sinks []*videoSink

	processed *videoSink
	tactical  *videoSink
	combined  *videoSink
}

//NewOutputs prepares the enabled outputs, nothing is opened before the first Write
func NewOutputs(cfg OutputConfig, baseName string, fps float64) *Outputs {
	o := &Outputs{cfg: cfg}

	if cfg.SaveProcessed {
		o.processed = newVideoSink(cfg, baseName, utils.ProcessedSuffix, fps)
		o.sinks = append(o.sinks, o.processed)
	}
	if cfg.SaveTactical {
		o.tactical = newVideoSink(cfg, baseName, utils.TacticalSuffix, fps)
		o.sinks = append(o.sinks, o.tactical)
	}
	if cfg.SaveCombined {
		o.combined = newVideoSink(cfg, baseName, utils.CombinedSuffix, fps)
		o.sinks = append(o.sinks, o.combined)
	}

	return o
}

//Write writes one annotated frame and its tactical map to the enabled outputs
func (o *Outputs) Write(frame, mapMat gocv.Mat) error {
	processed := fitWithin(frame, utils.MaxProcessedWidth, utils.MaxProcessedHeight)
	defer processed.Close()

	if o.processed != nil {
		if err := o.processed.write(processed); err != nil {
			return err
		}
	}

	if o.tactical != nil {
		if err := o.tactical.write(mapMat); err != nil {
			return err
		}
	}

	if o.combined != nil {
		combined := combine(processed, mapMat)
		defer combined.Close()

		if o.cfg.Resize && o.cfg.Width > 0 && o.cfg.Height > 0 {
			resized := gocv.NewMat()
			defer resized.Close()
			gocv.Resize(combined, &resized, image.Pt(o.cfg.Width, o.cfg.Height), 0, 0, gocv.InterpolationLinear)
			return o.combined.write(resized)
		}

		if err := o.combined.write(combined); err != nil {
			return err
		}
	}

	return nil
}

//Close finishes every output and returns the names of the ready videos
func (o *Outputs) Close() []string {
	names := make([]string, 0, len(o.sinks))
	for _, s := range o.sinks {
		if ok, err := s.finish(o.cfg.ReadyDir); err != nil {
			log.Printf("Outputs.Close: Error, got '%v'", err)
		} else if ok {
			names = append(names, s.name)
		}
	}
	return names
}
