package slopplot

// Stage is a point in the generation pipeline.
// A call moves Idle → Built → Requested → Extracted → (Executed) → Done and never goes back.
type Stage int

const (
	StageIdle Stage = iota
	StageBuilt
	StageRequested
	StageExtracted
	StageExecuted
	StageDone
)

var stageNames = [...]string{
	StageIdle:      "idle",
	StageBuilt:     "built",
	StageRequested: "requested",
	StageExtracted: "extracted",
	StageExecuted:  "executed",
	StageDone:      "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
