package service

import "errors"

// Sentinel errors surfaced to handlers. Validation errors must be corrected
// by the caller; stale-session errors reject mutations on sessions that can
// no longer change.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrStudentNotEnrolled   = errors.New("student not enrolled in session")
	ErrSessionNotScheduled  = errors.New("session is not in scheduled state")
	ErrSessionNotOpen       = errors.New("session does not accept events")
	ErrSessionAlreadyClosed = errors.New("session already closed")
	ErrSessionNotClosed     = errors.New("session is not closed")
	ErrCorrectionExpired    = errors.New("correction window has expired")
	ErrEmptyOverrideReason  = errors.New("override reason must not be empty")
	ErrInvalidStatus        = errors.New("invalid attendance status")
	ErrInvalidTimeRange     = errors.New("session end must be after start")
	ErrDuplicateRollNumber  = errors.New("roll number already registered")
)
