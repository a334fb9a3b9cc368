package dto

import (
	"time"

	"github.com/campusface/attendance-api/internal/models"
)

// RecognitionEventRequest is the payload pushed by the camera/QR collaborator.
// StudentID is null when the recognition pipeline could not match a face.
type RecognitionEventRequest struct {
	SessionID  uint    `json:"session_id" validate:"required"`
	StudentID  *uint   `json:"student_id"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=100"`
	CapturedAt string  `json:"captured_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	CameraID   string  `json:"camera_id" validate:"required,max=64"`
	Source     string  `json:"source" validate:"required,oneof=camera qr"`
}

// ToEvent converts the request into the engine's event form.
func (r RecognitionEventRequest) ToEvent(id string) (models.RecognitionEvent, error) {
	capturedAt, err := time.Parse(time.RFC3339, r.CapturedAt)
	if err != nil {
		return models.RecognitionEvent{}, err
	}

	return models.RecognitionEvent{
		ID:         id,
		SessionID:  r.SessionID,
		StudentID:  r.StudentID,
		Confidence: r.Confidence,
		CapturedAt: capturedAt,
		CameraID:   r.CameraID,
		Source:     models.EventSource(r.Source),
	}, nil
}

// Ingest outcome codes reported back to the pushing collaborator.
const (
	IngestApplied         = "applied"
	IngestDuplicate       = "duplicate"
	IngestUnmatched       = "unmatched"
	IngestBelowFloor      = "below_confidence_floor"
	IngestManualPrecd     = "manual_override_precedence"
	IngestDisputedPrecd   = "disputed_precedence"
	IngestAlreadyMarked   = "already_marked"
	IngestOutsideWindow   = "outside_grace_window"
	IngestDisputedFlagged = "disputed"
)

// IngestResult reports what the engine did with a recognition event.
type IngestResult struct {
	EventID string       `json:"event_id"`
	Outcome string       `json:"outcome"`
	Record  *RosterEntry `json:"record,omitempty"`
}
