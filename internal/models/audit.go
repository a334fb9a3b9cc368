package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActorSystem is the actor recorded for automatic status changes.
const ActorSystem = "system"

// Audit actions describing why a roster entry changed.
const (
	AuditActionAutoMark   = "auto_mark"
	AuditActionOverride   = "override"
	AuditActionDisputed   = "disputed"
	AuditActionUnmatched  = "unmatched"
	AuditActionRosterInit = "roster_init"
)

// AuditEntry is one immutable line in the attendance audit trail. Entries are
// append-only; nothing in the engine updates or deletes them.
type AuditEntry struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	SessionID  uint              `gorm:"index;not null" json:"session_id"`
	StudentID  *uint             `gorm:"index" json:"student_id"`
	PrevStatus AttendanceStatus  `gorm:"size:16" json:"prev_status"`
	NewStatus  AttendanceStatus  `gorm:"size:16" json:"new_status"`
	Actor      string            `gorm:"size:64;not null" json:"actor"`
	Action     string            `gorm:"size:32;not null" json:"action"`
	Reason     string            `gorm:"type:text" json:"reason"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
