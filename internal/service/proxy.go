package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/models"
	"github.com/campusface/attendance-api/internal/repository"
)

// ProxyVerdict is the detector's advisory result. The session engine decides
// the final status; the detector never mutates the roster itself.
type ProxyVerdict struct {
	Flagged   bool
	Reason    string
	Conflicts []repository.ConflictCandidate
}

// ProxyDetector flags physically impossible attendance: the same student
// marked present or late in two open sessions whose time ranges overlap.
type ProxyDetector struct {
	attendance repository.AttendanceRepository
	floor      float64
	logger     zerolog.Logger
}

// NewProxyDetector builds a detector with the given confidence floor.
func NewProxyDetector(attendance repository.AttendanceRepository, floor float64, logger zerolog.Logger) *ProxyDetector {
	return &ProxyDetector{
		attendance: attendance,
		floor:      floor,
		logger:     logger.With().Str("component", "proxy_detector").Logger(),
	}
}

// BelowFloor reports whether the confidence is too low to auto-apply. Events
// under the floor are surfaced for manual resolution, never silently accepted.
func (p *ProxyDetector) BelowFloor(confidence float64) bool {
	return confidence < p.floor
}

// Check looks for overlapping present/late records of the same student in
// other open sessions.
func (p *ProxyDetector) Check(ctx context.Context, session models.ClassSession, event models.RecognitionEvent) (ProxyVerdict, error) {
	if event.StudentID == nil {
		return ProxyVerdict{}, nil
	}

	candidates, err := p.attendance.FindOpenConflicts(ctx, *event.StudentID, session.ID)
	if err != nil {
		return ProxyVerdict{}, err
	}

	conflicts := make([]repository.ConflictCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if session.Overlaps(candidate.Session) {
			conflicts = append(conflicts, candidate)
		}
	}

	if len(conflicts) == 0 {
		return ProxyVerdict{}, nil
	}

	p.logger.Warn().
		Uint("session_id", session.ID).
		Uint("student_id", *event.StudentID).
		Int("conflicts", len(conflicts)).
		Msg("spatially impossible attendance flagged")

	return ProxyVerdict{
		Flagged:   true,
		Reason:    "student recognized in overlapping sessions",
		Conflicts: conflicts,
	}, nil
}
