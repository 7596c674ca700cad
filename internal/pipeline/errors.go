package pipeline

import "fmt"

// Stage names used in PipelineError.
const (
	StageFetch   = "fetch"
	StageExtract = "extract"
	StageMerge   = "merge"
)

// ParseError reports a split whose answer text was not a valid fragment.
type ParseError struct {
	OperatorID int
	Split      int
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("operator %d split %d produced an invalid fragment: %v", e.OperatorID, e.Split, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PipelineError wraps the first unrecovered stage error for an operator.
type PipelineError struct {
	OperatorID int
	Stage      string
	Err        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed for operator %d at stage %s: %v", e.OperatorID, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
