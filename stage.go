package analyst

import "fmt"

// Stage identifies one state of the orchestration run. Stages are strictly
// sequential; one progress event is emitted before each stage starts.
type Stage int

const (
	StagePlanning Stage = iota
	StageFetching
	StageRecalling
	StageComposing
	StageGenerating
	StagePersisting
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StagePlanning:
		return "planning"
	case StageFetching:
		return "fetching"
	case StageRecalling:
		return "recalling"
	case StageComposing:
		return "composing"
	case StageGenerating:
		return "generating"
	case StagePersisting:
		return "persisting"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Status is the short human-readable progress message for the stage.
func (s Stage) Status() string {
	switch s {
	case StagePlanning:
		return "Planning locations and dates..."
	case StageFetching:
		return "Fetching live telemetry data..."
	case StageRecalling:
		return "Retrieving similar insights..."
	case StageComposing:
		return "Building response prompt..."
	case StageGenerating:
		return "Generating tailored response..."
	case StagePersisting:
		return "Saving insight to memory..."
	case StageDone:
		return "Done."
	}
	return ""
}

// StageError annotates a terminal failure with the stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
