package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidTaskStatus is returned when a task status is not one of the
	// known lifecycle states.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTransition is returned when a status change does not follow
	// an edge of the task lifecycle graph.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidTaskType is returned when a project's task type is not
	// supported by any registered labeler.
	ErrInvalidTaskType = errors.New("invalid task type")

	// ErrInvalidFeedbackAction is returned when a client feedback action is
	// neither approve nor reject.
	ErrInvalidFeedbackAction = errors.New("invalid feedback action")

	// ErrInvalidConfidence is returned when a confidence score falls outside
	// the [0,1] range.
	ErrInvalidConfidence = errors.New("confidence score must be within [0,1]")
)
