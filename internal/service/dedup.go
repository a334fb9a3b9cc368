package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/models"
)

type dedupKey struct {
	sessionID uint
	studentID uint
}

type dedupState struct {
	acceptedAt time.Time
	confidence float64
}

// Deduplicator suppresses the detection bursts cameras emit for a single
// physical walk-through. An event is a duplicate when the same student's
// event for the same session falls within the suppression window of the last
// accepted one and its confidence is not higher by at least the margin.
type Deduplicator struct {
	window time.Duration
	margin float64
	logger zerolog.Logger

	mu   sync.Mutex
	seen map[dedupKey]dedupState
}

// NewDeduplicator builds a deduplicator with the given suppression window
// and confidence margin.
func NewDeduplicator(window time.Duration, margin float64, logger zerolog.Logger) *Deduplicator {
	return &Deduplicator{
		window: window,
		margin: margin,
		logger: logger.With().Str("component", "deduplicator").Logger(),
		seen:   make(map[dedupKey]dedupState),
	}
}

// IsDuplicate reports whether the event falls inside the suppression window
// of the last accepted event without beating its confidence by the margin.
// It never mutates state; call Accept once the event's effects are committed.
func (d *Deduplicator) IsDuplicate(event models.RecognitionEvent) bool {
	if event.StudentID == nil {
		// Unmatched events carry no identity to suppress on.
		return false
	}

	key := dedupKey{sessionID: event.SessionID, studentID: *event.StudentID}

	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.seen[key]
	if !ok {
		return false
	}

	within := event.CapturedAt.Sub(last.acceptedAt) < d.window && !event.CapturedAt.Before(last.acceptedAt.Add(-d.window))
	if within && event.Confidence < last.confidence+d.margin {
		d.logger.Debug().
			Uint("session_id", event.SessionID).
			Uint("student_id", *event.StudentID).
			Float64("confidence", event.Confidence).
			Msg("duplicate event suppressed")
		return true
	}

	return false
}

// Accept records the event as the suppression anchor for its (session,
// student) pair. Callers invoke it only after the event's effects have
// been persisted.
func (d *Deduplicator) Accept(event models.RecognitionEvent) {
	if event.StudentID == nil {
		return
	}

	key := dedupKey{sessionID: event.SessionID, studentID: *event.StudentID}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[key] = dedupState{acceptedAt: event.CapturedAt, confidence: event.Confidence}
}

// Forget drops suppression state for a session once it closes.
func (d *Deduplicator) Forget(sessionID uint) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key := range d.seen {
		if key.sessionID == sessionID {
			delete(d.seen, key)
		}
	}
}
