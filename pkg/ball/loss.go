package ball

import "github.com/chenBenjamin97/tactical-map/pkg/geometry"

//LossCounter counts consecutive frames without a ball detection
type LossCounter struct {
	Threshold int
	missed    int
}

//Observe records whether the ball was detected in the current frame
func (c *LossCounter) Observe(detected bool) {
	if detected {
		c.missed = 0
	} else {
		c.missed++
	}
}

//Missed returns the number of consecutive frames without the ball
func (c *LossCounter) Missed() int {
	return c.missed
}

//Expired reports whether the ball has been missing for more than Threshold frames
func (c *LossCounter) Expired() bool {
	return c.missed > c.Threshold
}

//Config holds the ball tracking parameters
type Config struct {
	DistanceThreshold float64 //pixels between consecutive samples of one trajectory
	MaxLength         int     //samples kept
	NoBallThreshold   int     //missing frames before the trajectory is dropped
}

//Tracker combines a History with its loss policy: once the ball has been
//missing for more than NoBallThreshold frames the whole trajectory is
//cleared at the start of the next frame.
type Tracker struct {
	cfg     Config
	history *History
	loss    LossCounter
}

//NewTracker returns a tracker with an empty trajectory
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:     cfg,
		history: NewHistory(cfg.MaxLength),
		loss:    LossCounter{Threshold: cfg.NoBallThreshold},
	}
}

//BeginFrame applies the loss policy, it must be called once before any Observe of a frame
func (t *Tracker) BeginFrame() {
	if t.loss.Expired() {
		t.history.Reset()
	}
}

//Seen records whether the ball was detected this frame without touching the trajectory
func (t *Tracker) Seen(detected bool) {
	t.loss.Observe(detected)
}

//Observe adds a projected ball position to the trajectory
func (t *Tracker) Observe(frame, plane *geometry.Point) error {
	return Update(t.history, frame, plane, t.cfg.DistanceThreshold, t.cfg.MaxLength)
}

//History returns the live trajectory
func (t *Tracker) History() *History {
	return t.history
}

//Missed returns the loss counter value
func (t *Tracker) Missed() int {
	return t.loss.Missed()
}
