package labeling

import "errors"

// Common errors returned by the labeling package
var (
	// ErrLabelingFailed is returned when labeling fails for any general reason
	ErrLabelingFailed = errors.New("failed to label text")

	// ErrInvalidResponse is returned when the model response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during labeling")

	// ErrUnsupportedTaskType is returned when no labeler is registered for the task type
	ErrUnsupportedTaskType = errors.New("unsupported task type")

	// ErrInvalidConfig is returned when the labeler configuration is invalid
	ErrInvalidConfig = errors.New("invalid labeler configuration")
)
