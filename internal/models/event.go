package models

import "time"

// EventSource distinguishes camera recognitions from QR fallback scans.
type EventSource string

const (
	EventSourceCamera EventSource = "camera"
	EventSourceQR     EventSource = "qr"
)

// RecognitionEvent is a single match emitted by the recognition collaborator.
// Events are consumed once and never stored; only their audit derivative is
// retained. StudentID is nil when the face could not be matched to a roll
// number.
type RecognitionEvent struct {
	ID         string
	SessionID  uint
	StudentID  *uint
	Confidence float64
	CapturedAt time.Time
	CameraID   string
	Source     EventSource
}

// RecordSource maps the transport source to the roster provenance value.
func (e RecognitionEvent) RecordSource() RecordSource {
	if e.Source == EventSourceQR {
		return SourceQRFallback
	}
	return SourceAuto
}
