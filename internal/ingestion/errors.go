package ingestion

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline a run failed. Stages progress
// strictly forward; none is re-entered within a run.
type Stage string

const (
	StageValidating       Stage = "validating"
	StageProbing          Stage = "probing"
	StageTranscoding      Stage = "transcoding"
	StageManifestBuilding Stage = "manifest_building"
	StagePublishing       Stage = "publishing"
	StageRecordPersisting Stage = "record_persisting"
	StageCleaningUp       Stage = "cleaning_up"
)

// ErrValidation marks request-shape failures that surface to the caller
// as a bad request rather than an internal error.
var ErrValidation = errors.New("invalid ingestion request")

// StageError wraps a failure with the pipeline stage it occurred in. The
// stage is logged, never exposed to callers outside development modes.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage extracts the stage from an ingestion error, or "" when the
// error did not come out of the pipeline.
func FailedStage(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
