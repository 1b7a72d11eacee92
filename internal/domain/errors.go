package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a candidate file rejected for its slot.
type ValidationError struct {
	Kind      Kind
	Name      string
	MediaType string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s rejected: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s %q rejected: %s", e.Kind, e.Name, e.Reason)
}

// Step identifies one stage of the analysis pipeline.
type Step string

const (
	StepIsolate       Step = "isolate"
	StepUploadPolicy  Step = "upload_policy"
	StepUploadDataset Step = "upload_dataset"
	StepEvaluate      Step = "evaluate"
)

var (
	ErrIsolation    = errors.New("isolation failed")
	ErrUpload       = errors.New("upload failed")
	ErrEvaluation   = errors.New("evaluation failed")
	ErrHistoryFetch = errors.New("history fetch failed")
	ErrRunInFlight  = errors.New("an analysis run is already in flight")
)

// OrchestrationError is the single error returned by a failed run. Detail
// carries the upstream error text verbatim when the server sent one.
type OrchestrationError struct {
	Step   Step
	Status int
	Detail string
	Err    error
}

func (e *OrchestrationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.kind(), e.Step)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (%d)", e.Status)
	}
	if e.Detail != "" {
		return msg + ": " + e.Detail
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *OrchestrationError) Unwrap() error { return e.Err }

// Is matches the step-kind sentinels ErrIsolation, ErrUpload and ErrEvaluation.
func (e *OrchestrationError) Is(target error) bool {
	return target == e.kind()
}

// Target names the upload that failed ("policy" or "dataset"); empty for
// other steps.
func (e *OrchestrationError) Target() string {
	switch e.Step {
	case StepUploadPolicy:
		return string(KindPolicy)
	case StepUploadDataset:
		return string(KindDataset)
	}
	return ""
}

func (e *OrchestrationError) kind() error {
	switch e.Step {
	case StepIsolate:
		return ErrIsolation
	case StepUploadPolicy, StepUploadDataset:
		return ErrUpload
	default:
		return ErrEvaluation
	}
}

// HistoryFetchError is the non-fatal failure of a history refresh.
type HistoryFetchError struct {
	Err error
}

func (e *HistoryFetchError) Error() string {
	return fmt.Sprintf("%s: %v", ErrHistoryFetch, e.Err)
}

func (e *HistoryFetchError) Unwrap() error { return e.Err }

func (e *HistoryFetchError) Is(target error) bool { return target == ErrHistoryFetch }

// StatusError is returned by backends when the server answers with a
// non-2xx status. Body is the raw response body.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Body)
}
