package models

import "time"

// SessionState names a stage in the class session lifecycle.
type SessionState string

// Session lifecycle states. Transitions only move forward:
// scheduled -> active -> grace_expired -> closed.
const (
	SessionScheduled    SessionState = "scheduled"
	SessionActive       SessionState = "active"
	SessionGraceExpired SessionState = "grace_expired"
	SessionClosed       SessionState = "closed"
)

// ClassSession is a single scheduled meeting of a class, owning one roster.
type ClassSession struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	Subject            string       `gorm:"size:255;not null" json:"subject"`
	Room               string       `gorm:"size:64;not null" json:"room"`
	StartTime          time.Time    `gorm:"not null" json:"start_time"`
	EndTime            time.Time    `gorm:"not null" json:"end_time"`
	GraceWindowMinutes int          `gorm:"not null" json:"grace_window_minutes"`
	State              SessionState `gorm:"size:16;not null;default:scheduled;index" json:"state"`
	StartedAt          *time.Time   `json:"started_at"`
	ClosedAt           *time.Time   `json:"closed_at"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// GraceDeadline returns the instant the grace window ends. An arrival at
// exactly this instant still counts as late.
func (s ClassSession) GraceDeadline() time.Time {
	return s.StartTime.Add(time.Duration(s.GraceWindowMinutes) * time.Minute)
}

// Overlaps reports whether the scheduled time ranges of two sessions intersect.
func (s ClassSession) Overlaps(other ClassSession) bool {
	return s.StartTime.Before(other.EndTime) && other.StartTime.Before(s.EndTime)
}

// AcceptsEvents reports whether recognition events may still mutate the roster.
func (s ClassSession) AcceptsEvents() bool {
	return s.State == SessionActive || s.State == SessionGraceExpired
}
