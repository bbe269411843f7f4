package utils

//PlayerClass is the enum represents an object detected as a player
const PlayerClass = 0

//RefereeClass is the enum represents an object detected as a referee
const RefereeClass = 1

//BallClass is the enum represents an object detected as a ball
const BallClass = 2

//MaxProcessedWidth and MaxProcessedHeight bound the size of the processed video frames
const MaxProcessedWidth = 1280
const MaxProcessedHeight = 720

//ProcessedSuffix, TacticalSuffix and CombinedSuffix are appended to the output base name of each video
const ProcessedSuffix = "_processed"
const TacticalSuffix = "_tactical"
const CombinedSuffix = "_combined"

//Run statuses, as stored and returned by the API
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunDone      = "done"
	RunFailed    = "failed"
	RunCancelled = "cancelled"
)
