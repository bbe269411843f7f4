package pipeline

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/chenBenjamin97/tactical-map/pkg/ball"
	"github.com/chenBenjamin97/tactical-map/pkg/team"
)

//ErrInvalidParams is returned by Validate
var ErrInvalidParams = errors.New("invalid analysis parameters")

//Params holds the tunables of one analysis run
type Params struct {
	KeypointTolerance float64 //RMS displacement, in pixels, of shared keypoints before the transform is recomputed
	Ball              ball.Config
	PaletteColors     int //K: colors kept per player palette
	ColorsPerTeam     int //M: reference colors per team
	TrackBall         bool
	Detector          DetectorConfig
}

//DefaultParams returns the values the analysis is tuned with
func DefaultParams() Params {
	return Params{
		KeypointTolerance: 7,
		Ball: ball.Config{
			DistanceThreshold: 100,
			MaxLength:         35,
			NoBallThreshold:   30,
		},
		PaletteColors: 3,
		ColorsPerTeam: 2,
		TrackBall:     true,
		Detector: DetectorConfig{
			Python:       "python3",
			PlayerConf:   0.6,
			KeypointConf: 0.7,
		},
	}
}

//SetDefaults registers DefaultParams in viper so a partial config file is enough
func SetDefaults() {
	d := DefaultParams()
	viper.SetDefault("analysis.keypoint_displacement_tolerance", d.KeypointTolerance)
	viper.SetDefault("analysis.ball_track_distance_threshold", d.Ball.DistanceThreshold)
	viper.SetDefault("analysis.ball_track_max_length", d.Ball.MaxLength)
	viper.SetDefault("analysis.no_ball_frames_threshold", d.Ball.NoBallThreshold)
	viper.SetDefault("analysis.palette_colors", d.PaletteColors)
	viper.SetDefault("analysis.colors_per_team", d.ColorsPerTeam)
	viper.SetDefault("analysis.track_ball", d.TrackBall)
	viper.SetDefault("detector.python", d.Detector.Python)
	viper.SetDefault("detector.player_conf", d.Detector.PlayerConf)
	viper.SetDefault("detector.keypoint_conf", d.Detector.KeypointConf)
}

//LoadParams reads the analysis parameters from the configuration
func LoadParams() (Params, error) {
	p := Params{
		KeypointTolerance: viper.GetFloat64("analysis.keypoint_displacement_tolerance"),
		Ball: ball.Config{
			DistanceThreshold: viper.GetFloat64("analysis.ball_track_distance_threshold"),
			MaxLength:         viper.GetInt("analysis.ball_track_max_length"),
			NoBallThreshold:   viper.GetInt("analysis.no_ball_frames_threshold"),
		},
		PaletteColors: viper.GetInt("analysis.palette_colors"),
		ColorsPerTeam: viper.GetInt("analysis.colors_per_team"),
		TrackBall:     viper.GetBool("analysis.track_ball"),
		Detector: DetectorConfig{
			Python:       viper.GetString("detector.python"),
			Script:       viper.GetString("detector.script"),
			PlayerConf:   viper.GetFloat64("detector.player_conf"),
			KeypointConf: viper.GetFloat64("detector.keypoint_conf"),
		},
	}

	return p, p.Validate()
}

//Validate checks the ranges the analysis relies on
func (p Params) Validate() error {
	switch {
	case p.Ball.DistanceThreshold <= 0:
		return fmt.Errorf("%w: ball track distance threshold must be positive", ErrInvalidParams)
	case p.Ball.MaxLength < 1:
		return fmt.Errorf("%w: ball track max length must be at least 1", ErrInvalidParams)
	case p.Ball.NoBallThreshold < 0:
		return fmt.Errorf("%w: no ball frames threshold can not be negative", ErrInvalidParams)
	case p.PaletteColors < 1:
		return fmt.Errorf("%w: palette needs at least 1 color", ErrInvalidParams)
	case p.ColorsPerTeam < 1:
		return fmt.Errorf("%w: teams need at least 1 color", ErrInvalidParams)
	}
	return nil
}

//LoadReferences builds the team reference colors from the 'teams' configuration entry
func LoadReferences(colorsPerTeam int) (team.References, error) {
	var teams []team.TeamColors
	if err := viper.UnmarshalKey("teams", &teams); err != nil {
		return team.References{}, fmt.Errorf("LoadReferences: Could not read teams, got '%v'", err)
	}

	refs, err := team.NewReferences(teams)
	if err != nil {
		return team.References{}, err
	}

	if refs.ColorsPerTeam() != colorsPerTeam {
		return team.References{}, fmt.Errorf("LoadReferences: teams have %d colors, configured %d: %w", refs.ColorsPerTeam(), colorsPerTeam, team.ErrColorsPerTeam)
	}

	return refs, nil
}
