package service

import (
	"time"

	"github.com/campusface/attendance-api/internal/models"
)

// Classify maps an event's capture time to a status relative to the session's
// start and grace window. It depends only on timestamps, never on the
// session's lifecycle state. An arrival at exactly the grace deadline is
// late: the boundary is inclusive on the late side.
func Classify(session models.ClassSession, capturedAt time.Time) models.AttendanceStatus {
	if !capturedAt.After(session.StartTime) {
		return models.StatusPresent
	}
	if !capturedAt.After(session.GraceDeadline()) {
		return models.StatusLate
	}
	return models.StatusAbsent
}
