package models

import "time"

// AttendanceStatus is the authoritative status of a student within one session.
type AttendanceStatus string

// Attendance statuses. Disputed marks records flagged for proxy attendance
// and requires instructor resolution via an override.
const (
	StatusPresent  AttendanceStatus = "present"
	StatusLate     AttendanceStatus = "late"
	StatusAbsent   AttendanceStatus = "absent"
	StatusDisputed AttendanceStatus = "disputed"
)

// Valid reports whether the value is one of the known attendance statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusDisputed:
		return true
	}
	return false
}

// RecordSource identifies what produced the current status of a record.
type RecordSource string

const (
	SourceAuto           RecordSource = "auto"
	SourceManualOverride RecordSource = "manual_override"
	SourceQRFallback     RecordSource = "qr_fallback"
)

// AttendanceRecord holds one student's status within one session. Exactly one
// record exists per (session, student) pair; the unique index enforces it.
type AttendanceRecord struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	SessionID      uint             `gorm:"uniqueIndex:idx_attendance_session_student;not null" json:"session_id"`
	StudentID      uint             `gorm:"uniqueIndex:idx_attendance_session_student;not null" json:"student_id"`
	Status         AttendanceStatus `gorm:"size:16;not null" json:"status"`
	RecognizedAt   *time.Time       `json:"recognized_at"`
	Confidence     *float64         `json:"confidence"`
	Source         RecordSource     `gorm:"size:16;not null;default:auto" json:"source"`
	OverrideReason *string          `json:"override_reason"`
	CameraID       string           `gorm:"size:64" json:"camera_id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ManuallySet reports whether the record was last written by an instructor
// override. Automatic events never replace a manually set status.
func (r AttendanceRecord) ManuallySet() bool {
	return r.Source == SourceManualOverride
}
