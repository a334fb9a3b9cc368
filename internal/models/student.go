package models

import "time"

// Student represents an enrolled learner identified by an institution-wide roll number.
type Student struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	RollNumber  string       `gorm:"size:32;uniqueIndex;not null" json:"roll_number"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Email       string       `gorm:"size:255;uniqueIndex" json:"email"`
	Enrollments []Enrollment `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Enrollment links a student to a class session they are expected to attend.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"uniqueIndex:idx_enrollment_student_session;not null" json:"student_id"`
	SessionID uint      `gorm:"uniqueIndex:idx_enrollment_student_session;not null" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}
