package dto

import (
	"time"

	"github.com/campusface/attendance-api/internal/models"
)

// SessionCreateRequest describes the payload from the timetable collaborator.
type SessionCreateRequest struct {
	Subject            string `json:"subject" validate:"required,min=2,max=255"`
	Room               string `json:"room" validate:"required,max=64"`
	StartTime          string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime            string `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	GraceWindowMinutes int    `json:"grace_window_minutes" validate:"omitempty,gte=0,lte=120"`
	StudentIDs         []uint `json:"student_ids" validate:"required,min=1,dive,required"`
}

// OverrideRequest is an instructor-issued manual correction.
type OverrideRequest struct {
	StudentID uint   `json:"student_id" validate:"required"`
	NewStatus string `json:"new_status" validate:"required,oneof=present late absent disputed"`
	Reason    string `json:"reason" validate:"required,min=3"`
}

// SessionResponse is the serialized representation returned to API clients.
type SessionResponse struct {
	ID                 uint       `json:"id"`
	Subject            string     `json:"subject"`
	Room               string     `json:"room"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	GraceWindowMinutes int        `json:"grace_window_minutes"`
	GraceDeadline      time.Time  `json:"grace_deadline"`
	State              string     `json:"state"`
	StartedAt          *time.Time `json:"started_at"`
	ClosedAt           *time.Time `json:"closed_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

// NewSessionResponse converts a model into a DTO.
func NewSessionResponse(model models.ClassSession) SessionResponse {
	return SessionResponse{
		ID:                 model.ID,
		Subject:            model.Subject,
		Room:               model.Room,
		StartTime:          model.StartTime,
		EndTime:            model.EndTime,
		GraceWindowMinutes: model.GraceWindowMinutes,
		GraceDeadline:      model.GraceDeadline(),
		State:              string(model.State),
		StartedAt:          model.StartedAt,
		ClosedAt:           model.ClosedAt,
		CreatedAt:          model.CreatedAt,
	}
}

// RosterEntry is one student's attendance line in a roster snapshot.
type RosterEntry struct {
	StudentID      uint       `json:"student_id"`
	RollNumber     string     `json:"roll_number"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	RecognizedAt   *time.Time `json:"recognized_at"`
	Confidence     *float64   `json:"confidence"`
	Source         string     `json:"source"`
	OverrideReason *string    `json:"override_reason"`
	CameraID       string     `json:"camera_id,omitempty"`
}

// RosterSummary carries the aggregate counts shown next to a roster.
type RosterSummary struct {
	Enrolled int `json:"enrolled"`
	Present  int `json:"present"`
	Late     int `json:"late"`
	Absent   int `json:"absent"`
	Disputed int `json:"disputed"`
}

// RosterResponse is an immutable snapshot of a session's roster.
type RosterResponse struct {
	Session SessionResponse `json:"session"`
	Summary RosterSummary   `json:"summary"`
	Entries []RosterEntry   `json:"entries"`
}

// NewRosterEntry converts an attendance record plus its student into a DTO.
func NewRosterEntry(record models.AttendanceRecord, student models.Student) RosterEntry {
	return RosterEntry{
		StudentID:      record.StudentID,
		RollNumber:     student.RollNumber,
		Name:           student.Name,
		Status:         string(record.Status),
		RecognizedAt:   record.RecognizedAt,
		Confidence:     record.Confidence,
		Source:         string(record.Source),
		OverrideReason: record.OverrideReason,
		CameraID:       record.CameraID,
	}
}

// AuditEntryResponse is the serialized audit trail line.
type AuditEntryResponse struct {
	ID         uint                   `json:"id"`
	SessionID  uint                   `json:"session_id"`
	StudentID  *uint                  `json:"student_id"`
	PrevStatus string                 `json:"prev_status"`
	NewStatus  string                 `json:"new_status"`
	Actor      string                 `json:"actor"`
	Action     string                 `json:"action"`
	Reason     string                 `json:"reason"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewAuditEntryResponse converts a model into a DTO.
func NewAuditEntryResponse(entry models.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         entry.ID,
		SessionID:  entry.SessionID,
		StudentID:  entry.StudentID,
		PrevStatus: string(entry.PrevStatus),
		NewStatus:  string(entry.NewStatus),
		Actor:      entry.Actor,
		Action:     entry.Action,
		Reason:     entry.Reason,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}

// NewAuditEntryResponseSlice converts a slice of models into DTOs.
func NewAuditEntryResponseSlice(entries []models.AuditEntry) []AuditEntryResponse {
	responses := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewAuditEntryResponse(entry))
	}

	return responses
}

// RosterUpdate is published on every roster mutation for live consumers.
type RosterUpdate struct {
	SessionID uint          `json:"session_id"`
	Entry     RosterEntry   `json:"entry"`
	Summary   RosterSummary `json:"summary"`
	ChangedAt time.Time     `json:"changed_at"`
}
